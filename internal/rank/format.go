// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// maxAttachments caps the attachment lines printed for one record.
const maxAttachments = 10

// FormatTable writes search results as a human-readable table to w.
func FormatTable(res Result, w io.Writer) {
	if len(res.Matches) == 0 {
		fmt.Fprintf(w, "No weapons found matching %q (%s).\n", res.Query, res.Reason)
		return
	}

	fmt.Fprintf(w, "%-4s  %-30s  %-14s  %-16s  %-4s  %s\n",
		"#", "Weapon", "Mode", "Range", "Rank", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 86))

	for i, m := range res.Matches {
		r := m.Record
		fmt.Fprintf(w, "%-4d  %-30s  %-14s  %-16s  %-4d  %.2f\n",
			i+1, truncate(r.Name, 30), truncate(r.Mode, 14), truncate(r.Range, 16), r.Rank, m.Score)
	}

	fmt.Fprintf(w, "\n%d results\n", len(res.Matches))
}

// FormatJSON writes the result as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatRecord writes the detailed view of one record to w.
func FormatRecord(r types.WeaponRecord, w io.Writer) {
	fmt.Fprintf(w, "%s\n", r.Name)
	fmt.Fprintf(w, "Category: %s - %s\n", r.Mode, r.Range)
	fmt.Fprintf(w, "Rank:     #%d\n", r.Rank)
	fmt.Fprintf(w, "Updated:  %s\n", r.Updated)
	if r.Image != nil {
		fmt.Fprintf(w, "Image:    %s\n", *r.Image)
	}
	if len(r.Attachments) == 0 {
		return
	}
	fmt.Fprintln(w, "Attachments:")
	for i, a := range r.Attachments {
		if i == maxAttachments {
			fmt.Fprintf(w, "  ... and %d more\n", len(r.Attachments)-maxAttachments)
			break
		}
		fmt.Fprintf(w, "  • %s\n", a)
	}
}

// FormatTop writes a category top list to w.
func FormatTop(mode, rng string, recs []types.WeaponRecord, w io.Writer) {
	fmt.Fprintf(w, "Top %d weapons in %s - %s:\n\n", len(recs), mode, rng)
	for _, r := range recs {
		fmt.Fprintf(w, "%3d. %s\n", r.Rank, r.Name)
	}
}

// FormatStats writes the catalog breakdown to w.
func FormatStats(s CatalogStats, w io.Writer) {
	updated := "Unknown"
	if !s.BuiltAt.IsZero() {
		updated = s.BuiltAt.Format("2006-01-02 15:04:05 UTC")
	}
	fmt.Fprintf(w, "Total weapons: %d\n", s.TotalCount)
	fmt.Fprintf(w, "Last updated:  %s\n\n", updated)
	for _, c := range s.Categories {
		fmt.Fprintf(w, "  %-32s %d weapons\n", c.Mode+" - "+c.Range, c.Count)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
