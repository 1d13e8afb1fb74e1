// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape reads weapon loadout pages into raw page records. The
// browser source drives a live page with go-rod; the html source reads
// pages saved to disk.
package scrape

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/loadout-engine/internal/build"
	"github.com/pdiddy/loadout-engine/pkg/types"
)

// Page selectors shared by both sources.
const (
	selLoadoutList = "app-weapon-loadouts"
	selContainer   = "div.loadout-container"
	selName        = "h3.loadout-content-name"
	selDetail      = "div.loadout-detail"
	selImage       = "div.weapon-image-rank-container img"
)

// Source is a fetcher that holds resources until closed.
type Source interface {
	build.Fetcher
	io.Closer
}

// New returns the source selected by cfg.Source.
func New(cfg types.BuildConfig, logger *zap.Logger) (Source, error) {
	switch cfg.Source {
	case types.SourceBrowser, "":
		return NewRodFetcher(cfg.Browser, logger), nil
	case types.SourceHTML:
		if cfg.HTMLDir == "" {
			return nil, fmt.Errorf("html source requires build.html_dir")
		}
		return NewHTMLFetcher(cfg.HTMLDir), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

var hasTextPattern = regexp.MustCompile(`^(.*):has-text\(\s*(?:'([^']*)'|"([^"]*)")\s*\)$`)

// ParseSelector splits a tab selector of the form css:has-text('Label')
// into its CSS part and the label text. A plain CSS selector returns an
// empty label.
func ParseSelector(sel string) (css, label string) {
	sel = strings.TrimSpace(sel)
	m := hasTextPattern.FindStringSubmatch(sel)
	if m == nil {
		return sel, ""
	}
	label = m[2]
	if label == "" {
		label = m[3]
	}
	css = strings.TrimSpace(m[1])
	if css == "" {
		css = "*"
	}
	return css, label
}

// TextRegex returns the case-insensitive JavaScript regex literal that
// matches label anywhere in an element's text.
func TextRegex(label string) string {
	return "/" + regexp.QuoteMeta(label) + "/i"
}

// Slug turns a category key into a file name stem,
// e.g. "Resurgence_Long Range" becomes "resurgence-long-range".
func Slug(key string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// splitLines breaks rendered element text into trimmed, non-blank lines.
func splitLines(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
