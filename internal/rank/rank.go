// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank answers free-text weapon queries against a catalog with a
// hybrid score: exact and substring name matches first, fuzzy matches
// after, ties kept in catalog order.
package rank

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// Score constants of the hybrid scoring function.
const (
	ScoreExact     = 1.0
	ScoreSubstring = 0.9
	FuzzyThreshold = 0.6
	FuzzyWeight    = 0.8
)

// Reason explains an empty or short result so callers can tell "no match"
// apart from "bad request" without an error.
type Reason string

const (
	ReasonOK              Reason = "ok"
	ReasonNoMatch         Reason = "no_match"
	ReasonInvalidLimit    Reason = "invalid_limit"
	ReasonEmptyCatalog    Reason = "empty_catalog"
	ReasonUnknownCategory Reason = "unknown_category"
	ReasonNotFound        Reason = "not_found"
)

// Match is a scored record.
type Match struct {
	Score  float64            `json:"score"`
	Record types.WeaponRecord `json:"record"`
}

// Result is the outcome of a search.
type Result struct {
	Query   string  `json:"query"`
	Reason  Reason  `json:"reason"`
	Matches []Match `json:"results"`
}

// Records returns the matched records in rank order.
func (r Result) Records() []types.WeaponRecord {
	out := make([]types.WeaponRecord, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Record
	}
	return out
}

// Search scores every record of the catalog against query and returns at
// most maxResults matches, best first. Records that do not qualify are left
// out. Equal scores keep catalog order (categories in build order, then
// rank). An empty query is a substring of every name, so it matches every
// record at ScoreSubstring.
func Search(c *types.Catalog, query string, maxResults int) Result {
	res := Result{Query: query, Matches: []Match{}}
	if maxResults < 1 {
		res.Reason = ReasonInvalidLimit
		return res
	}
	if c.IsEmpty() {
		res.Reason = ReasonEmptyCatalog
		return res
	}

	q := fold(query)
	for _, cat := range c.Categories {
		for _, rec := range cat.Records {
			if score, ok := Score(q, fold(rec.Name)); ok {
				res.Matches = append(res.Matches, Match{Score: score, Record: rec})
			}
		}
	}

	sort.SliceStable(res.Matches, func(i, j int) bool {
		return res.Matches[i].Score > res.Matches[j].Score
	})
	if len(res.Matches) > maxResults {
		res.Matches = res.Matches[:maxResults]
	}

	res.Reason = ReasonOK
	if len(res.Matches) == 0 {
		res.Reason = ReasonNoMatch
	}
	return res
}

// Score computes the hybrid score of folded query q against folded name n.
// The second return value is false when the record does not qualify.
func Score(q, n string) (float64, bool) {
	if strings.Contains(n, q) {
		if q == n {
			return ScoreExact, true
		}
		return ScoreSubstring, true
	}
	if sim := Similarity(q, n); sim > FuzzyThreshold {
		return sim * FuzzyWeight, true
	}
	return 0, false
}

// fold lower-cases s and puts it in NFC so composed and decomposed accents
// compare equal.
func fold(s string) string {
	return norm.NFC.String(strings.ToLower(s))
}
