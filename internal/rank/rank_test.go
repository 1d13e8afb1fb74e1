// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// --- fixtures ---

func rec(mode, rng string, rank int, name string) types.WeaponRecord {
	return types.WeaponRecord{
		Rank: rank, Mode: mode, Range: rng, Name: name,
		Attachments: []string{}, Updated: types.UnknownDate,
	}
}

func category(mode, rng string, names ...string) types.Category {
	c := types.Category{Mode: mode, Range: rng, Records: []types.WeaponRecord{}}
	for i, n := range names {
		c.Records = append(c.Records, rec(mode, rng, i+1, n))
	}
	return c
}

func sniperCatalog() *types.Catalog {
	return &types.Catalog{
		Categories: []types.Category{category("Resurgence", "Sniper", "Kar98k", "HDR")},
		BuiltAt:    time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
	}
}

func multiCatalog() *types.Catalog {
	return &types.Catalog{
		Categories: []types.Category{
			category("Resurgence", "Long Range", "AK-74", "Kilo 141", "M4"),
			category("Resurgence", "Sniper", "Kar98k", "HDR", "AK Marksman"),
			category("Verdansk", "Long Range", "AK-74", "Kilo 141"),
			category("Verdansk", "Close Range"),
		},
		BuiltAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
	}
}

func names(recs []types.WeaponRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Key() + "/" + r.Name
	}
	return out
}

// --- Similarity ---

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "", 0},
		{"kar98k", "kar98k", 1},
		{"kar9k", "kar98k", 10.0 / 11.0},
		{"abcd", "bcde", 6.0 / 8.0},
		{"xyz123", "kar98k", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kar9k", "kar98k"},
		{"mp5", "mp7"},
		{"abab", "baba"},
		{"tide", "diet"},
		{"kilo 141", "kilo141"},
		{"überwaffe", "uberwaffe"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "pair %v", p)
		assert.Equal(t, 1.0, Similarity(p[0], p[0]))
	}
}

func TestSimilarityMonotonicInSharedBlocks(t *testing.T) {
	target := "kilo141"
	prev := -1.0
	for _, q := range []string{"zzzzzzz", "kzzzzzz", "kizzzzz", "kilzzzz", "kilozzz", "kilo1zz", "kilo14z", "kilo141"} {
		s := Similarity(q, target)
		assert.GreaterOrEqual(t, s, prev, "query %q", q)
		prev = s
	}
}

// --- Score ---

func TestScoreMonotonicity(t *testing.T) {
	exact, ok := Score("kar98k", "kar98k")
	require.True(t, ok)
	sub, ok := Score("kar", "kar98k")
	require.True(t, ok)
	fuzzy, ok := Score("kar9k", "kar98k")
	require.True(t, ok)

	assert.Equal(t, ScoreExact, exact)
	assert.Equal(t, ScoreSubstring, sub)
	assert.Greater(t, exact, sub)
	assert.Greater(t, sub, fuzzy)
	assert.LessOrEqual(t, fuzzy, FuzzyWeight)

	_, ok = Score("xyz123", "kar98k")
	assert.False(t, ok)
}

func TestScoreThresholdIsStrict(t *testing.T) {
	// "abc" vs "abxyz": one block "ab", ratio 4/8 = 0.5.
	_, ok := Score("abc", "abxyz")
	assert.False(t, ok)
}

// --- Search ---

func TestSearchScenario(t *testing.T) {
	c := sniperCatalog()

	tests := []struct {
		query     string
		wantNames []string
		wantScore float64
		reason    Reason
	}{
		{"kar", []string{"Kar98k"}, ScoreSubstring, ReasonOK},
		{"Kar98k", []string{"Kar98k"}, ScoreExact, ReasonOK},
		{"KAR98K", []string{"Kar98k"}, ScoreExact, ReasonOK},
		{"xyz123", []string{}, 0, ReasonNoMatch},
		{"kar9k", []string{"Kar98k"}, 10.0 / 11.0 * FuzzyWeight, ReasonOK},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := Search(c, tt.query, 5)
			assert.Equal(t, tt.reason, res.Reason)

			got := make([]string, 0, len(res.Matches))
			for _, m := range res.Matches {
				got = append(got, m.Record.Name)
			}
			assert.Equal(t, tt.wantNames, got)
			if len(res.Matches) > 0 {
				assert.InDelta(t, tt.wantScore, res.Matches[0].Score, 1e-9)
			}
		})
	}
}

func TestSearchIsCatalogWideAndOrdered(t *testing.T) {
	res := Search(multiCatalog(), "ak-74", 10)
	require.Equal(t, ReasonOK, res.Reason)
	require.GreaterOrEqual(t, len(res.Matches), 2)

	// Both exact matches first, in category order.
	assert.Equal(t, []string{
		"Resurgence_Long Range/AK-74",
		"Verdansk_Long Range/AK-74",
	}, names(res.Records()[:2]))
	for i := 1; i < len(res.Matches); i++ {
		assert.GreaterOrEqual(t, res.Matches[i-1].Score, res.Matches[i].Score)
	}
}

func TestSearchStableTies(t *testing.T) {
	c := multiCatalog()
	first := Search(c, "k", 20)
	for i := 0; i < 10; i++ {
		again := Search(c, "k", 20)
		assert.Equal(t, names(first.Records()), names(again.Records()))
	}

	// All substring hits share 0.9 and keep catalog order.
	assert.Equal(t, []string{
		"Resurgence_Long Range/AK-74",
		"Resurgence_Long Range/Kilo 141",
		"Resurgence_Sniper/Kar98k",
		"Resurgence_Sniper/AK Marksman",
		"Verdansk_Long Range/AK-74",
		"Verdansk_Long Range/Kilo 141",
	}, names(first.Records()))
}

func TestSearchResultCap(t *testing.T) {
	c := multiCatalog()
	all := Search(c, "", 100)

	for k := 1; k <= 12; k++ {
		res := Search(c, "", k)
		assert.LessOrEqual(t, len(res.Matches), k)
		if len(res.Matches) == 0 {
			continue
		}
		lowest := res.Matches[len(res.Matches)-1].Score
		for _, m := range all.Matches[len(res.Matches):] {
			assert.GreaterOrEqual(t, lowest, m.Score)
		}
	}
}

func TestSearchEmptyQueryMatchesEverything(t *testing.T) {
	c := multiCatalog()
	res := Search(c, "", 100)

	assert.Equal(t, ReasonOK, res.Reason)
	assert.Len(t, res.Matches, c.TotalCount())
	for _, m := range res.Matches {
		assert.Equal(t, ScoreSubstring, m.Score)
	}
}

func TestSearchInvalidParameters(t *testing.T) {
	tests := []struct {
		name    string
		catalog *types.Catalog
		limit   int
		want    Reason
	}{
		{"zero limit", sniperCatalog(), 0, ReasonInvalidLimit},
		{"negative limit", sniperCatalog(), -3, ReasonInvalidLimit},
		{"empty catalog", types.EmptyCatalog(), 5, ReasonEmptyCatalog},
		{"nil catalog", nil, 5, ReasonEmptyCatalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Search(tt.catalog, "kar", tt.limit)
			assert.Equal(t, tt.want, res.Reason)
			assert.NotNil(t, res.Matches)
			assert.Empty(t, res.Matches)
		})
	}
}

func TestSearchUnicodeFolding(t *testing.T) {
	c := &types.Catalog{Categories: []types.Category{category("Multiplayer", "SMG", "Kárlo SMG")}}
	res := Search(c, "kárlo", 5)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, ScoreSubstring, res.Matches[0].Score)
}

// --- Lookup / Top / Stats ---

func TestLookup(t *testing.T) {
	c := multiCatalog()

	tests := []struct {
		name       string
		mode, rng  string
		fragment   string
		wantName   string
		wantReason Reason
	}{
		{"case-insensitive exact", "Resurgence", "Sniper", "hdr", "HDR", ReasonOK},
		{"substring in rank order", "Resurgence", "Sniper", "ar", "Kar98k", ReasonOK},
		{"exact beats substring", "Resurgence", "Long Range", "m4", "M4", ReasonOK},
		{"not found", "Resurgence", "Sniper", "m4", "", ReasonNotFound},
		{"unknown category", "Warzone", "Sniper", "kar", "", ReasonUnknownCategory},
		{"empty category", "Verdansk", "Close Range", "kar", "", ReasonNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := Lookup(c, tt.mode, tt.rng, tt.fragment)
			assert.Equal(t, tt.wantReason, reason)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestTop(t *testing.T) {
	c := multiCatalog()

	recs, reason := Top(c, "Resurgence", "Long Range", 2)
	assert.Equal(t, ReasonOK, reason)
	assert.Equal(t, []string{"AK-74", "Kilo 141"}, []string{recs[0].Name, recs[1].Name})

	recs, reason = Top(c, "Resurgence", "Long Range", 50)
	assert.Equal(t, ReasonOK, reason)
	assert.Len(t, recs, 3)

	_, reason = Top(c, "Verdansk", "Close Range", 5)
	assert.Equal(t, ReasonNoMatch, reason)
	_, reason = Top(c, "Nowhere", "Close Range", 5)
	assert.Equal(t, ReasonUnknownCategory, reason)
	_, reason = Top(c, "Resurgence", "Long Range", 0)
	assert.Equal(t, ReasonInvalidLimit, reason)
}

func TestStats(t *testing.T) {
	s := Stats(multiCatalog())
	assert.Equal(t, 8, s.TotalCount)
	require.Len(t, s.Categories, 4)
	assert.Equal(t, CategoryCount{Key: "Verdansk_Close Range", Mode: "Verdansk", Range: "Close Range", Count: 0}, s.Categories[3])

	empty := Stats(nil)
	assert.Zero(t, empty.TotalCount)
	assert.Empty(t, empty.Categories)
}

// --- formatting ---

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Search(sniperCatalog(), "kar", 5), &buf)
	out := buf.String()
	assert.Contains(t, out, "Kar98k")
	assert.Contains(t, out, "0.90")
	assert.Contains(t, out, "1 results")

	buf.Reset()
	FormatTable(Search(sniperCatalog(), "xyz123", 5), &buf)
	assert.Contains(t, buf.String(), "no_match")
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(Search(sniperCatalog(), "Kar98k", 5), &buf))

	var decoded struct {
		Reason  string `json:"reason"`
		Results []struct {
			Score  float64 `json:"score"`
			Record struct {
				Gun   string   `json:"gun"`
				Class []string `json:"class"`
			} `json:"record"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "ok", decoded.Reason)
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "Kar98k", decoded.Results[0].Record.Gun)
	assert.False(t, math.IsNaN(decoded.Results[0].Score))
}

func TestFormatRecordCapsAttachments(t *testing.T) {
	r := rec("Resurgence", "Sniper", 1, "Kar98k")
	for i := 0; i < 12; i++ {
		r.Attachments = append(r.Attachments, fmt.Sprintf("Part %d — Type", i))
	}
	var buf bytes.Buffer
	FormatRecord(r, &buf)
	assert.Contains(t, buf.String(), "Part 9 — Type")
	assert.NotContains(t, buf.String(), "Part 10 — Type")
	assert.Contains(t, buf.String(), "and 2 more")
}

func TestFormatTop(t *testing.T) {
	recs := []types.WeaponRecord{
		rec("Resurgence", "Sniper", 1, "Kar98k"),
		rec("Resurgence", "Sniper", 2, "HDR"),
	}
	var buf bytes.Buffer
	FormatTop("Resurgence", "Sniper", recs, &buf)
	assert.Equal(t, "Top 2 weapons in Resurgence - Sniper:\n\n"+
		"  1. Kar98k\n"+
		"  2. HDR\n", buf.String())
}

func TestFormatStats(t *testing.T) {
	s := CatalogStats{
		TotalCount: 2,
		BuiltAt:    time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Categories: []CategoryCount{
			{Key: "Resurgence_Sniper", Mode: "Resurgence", Range: "Sniper", Count: 2},
			{Key: "Verdansk_Close Range", Mode: "Verdansk", Range: "Close Range", Count: 0},
		},
	}
	var buf bytes.Buffer
	FormatStats(s, &buf)
	assert.Equal(t, "Total weapons: 2\n"+
		"Last updated:  2026-10-17 09:30:00 UTC\n\n"+
		"  Resurgence - Sniper              2 weapons\n"+
		"  Verdansk - Close Range           0 weapons\n", buf.String())

	buf.Reset()
	FormatStats(CatalogStats{}, &buf)
	assert.Equal(t, "Total weapons: 0\nLast updated:  Unknown\n\n", buf.String())
}
