// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns one scraped weapon entry into a canonical
// WeaponRecord. Scraped text is unreliable, so nothing here fails: every
// missing piece resolves to a documented default.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// AttachmentSeparator joins a part name and its part type.
const AttachmentSeparator = " — "

// noiseTokens mark page chrome inside the loadout detail block. A line whose
// upper-cased form contains any of them is not attachment data.
var noiseTokens = []string{"LEVEL", "CREATED ON", "UPDATED ON", "LOADOUTS"}

// dateMarkers introduce an explicit date line. Matching is case-sensitive.
var dateMarkers = []string{"Created on", "Updated on"}

var (
	datePattern = regexp.MustCompile(`(Created|Updated) on[ -]+(.+)`)
	yearPattern = regexp.MustCompile(`\d{4}`)
)

// Normalize converts a raw page record at 0-based on-page index within the
// (mode, rng) category into a WeaponRecord. It is a pure function of its
// inputs.
func Normalize(raw types.RawPageRecord, index int, mode, rng string) types.WeaponRecord {
	filtered := FilterNoise(raw.Lines)

	var image *string
	if raw.Image != nil {
		if v := strings.TrimSpace(*raw.Image); v != "" {
			image = &v
		}
	}

	return types.WeaponRecord{
		Rank:        index + 1,
		Mode:        mode,
		Range:       rng,
		Name:        ResolveName(raw.Name, index),
		Attachments: PairAttachments(filtered),
		Image:       image,
		Updated:     ResolveDate(raw.Lines, filtered),
	}
}

// ResolveName returns the trimmed title fragment, or a synthesized
// "Unknown Weapon N" when the fragment is blank.
func ResolveName(fragment string, index int) string {
	if name := strings.TrimSpace(fragment); name != "" {
		return name
	}
	return fmt.Sprintf("Unknown Weapon %d", index+1)
}

// FilterNoise trims lines and drops blank lines and page chrome.
func FilterNoise(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || isNoise(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func isNoise(line string) bool {
	upper := strings.ToUpper(line)
	for _, tok := range noiseTokens {
		if strings.Contains(upper, tok) {
			return true
		}
	}
	return false
}

// PairAttachments walks lines two at a time, treating each pair as
// (part name, part type). An odd trailing line stands alone. The walk
// assumes the page strictly alternates name and type lines; a layout that
// breaks the alternation shifts every following pair.
func PairAttachments(lines []string) []string {
	out := make([]string, 0, (len(lines)+1)/2)
	for i := 0; i < len(lines); {
		if i+1 < len(lines) {
			out = append(out, lines[i]+AttachmentSeparator+lines[i+1])
			i += 2
			continue
		}
		out = append(out, lines[i])
		i++
	}
	return out
}
