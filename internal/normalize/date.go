// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// DateRule is one step of the date fallback chain. It reports the resolved
// date and whether the rule applied.
type DateRule struct {
	Name    string
	Resolve func(raw, filtered []string) (string, bool)
}

// DateChain is the ordered list of date rules. The first rule that applies
// wins; the last rule always applies.
var DateChain = []DateRule{
	{Name: "marker", Resolve: dateFromMarker},
	{Name: "year-tail", Resolve: dateFromYearTail},
	{Name: "unknown", Resolve: dateUnknown},
}

// ResolveDate runs DateChain over the unfiltered and filtered body lines.
func ResolveDate(raw, filtered []string) string {
	date, _ := ResolveDateRule(raw, filtered)
	return date
}

// ResolveDateRule is ResolveDate that also names the rule that produced the
// value.
func ResolveDateRule(raw, filtered []string) (date, rule string) {
	for _, r := range DateChain {
		if v, ok := r.Resolve(raw, filtered); ok {
			return v, r.Name
		}
	}
	return types.UnknownDate, "unknown"
}

// dateFromMarker reads the first unfiltered line carrying "Created on" or
// "Updated on". The separator after "on" may be spaces or dashes.
func dateFromMarker(raw, _ []string) (string, bool) {
	for _, line := range raw {
		idx, marker := markerIndex(line)
		if idx < 0 {
			continue
		}
		if m := datePattern.FindStringSubmatch(line); m != nil {
			if v := strings.TrimSpace(m[2]); v != "" {
				return v, true
			}
		}
		if v := strings.TrimSpace(strings.TrimLeft(line[idx+len(marker):], " \t:-")); v != "" {
			return v, true
		}
		// A bare marker with nothing after it carries no date.
		return "", false
	}
	return "", false
}

func markerIndex(line string) (int, string) {
	for _, m := range dateMarkers {
		if idx := strings.Index(line, m); idx >= 0 {
			return idx, m
		}
	}
	return -1, ""
}

// dateFromYearTail uses the last surviving line verbatim when it holds a
// four-digit run.
func dateFromYearTail(_, filtered []string) (string, bool) {
	if len(filtered) == 0 {
		return "", false
	}
	last := filtered[len(filtered)-1]
	if yearPattern.MatchString(last) {
		return last, true
	}
	return "", false
}

func dateUnknown(_, _ []string) (string, bool) {
	return types.UnknownDate, true
}
