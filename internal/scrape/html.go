// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// HTMLFetcher reads category pages saved to disk. A saved page already
// shows its category's tab, so the selector is not applied.
type HTMLFetcher struct {
	dir string
}

// NewHTMLFetcher returns a fetcher reading <dir>/<slug>.html per category.
func NewHTMLFetcher(dir string) *HTMLFetcher {
	return &HTMLFetcher{dir: dir}
}

// Close is a no-op.
func (f *HTMLFetcher) Close() error { return nil }

// PagePath returns the file the fetcher reads for cfg: the path of a
// file:// URL, or the slugged category key inside the fetcher's directory.
func (f *HTMLFetcher) PagePath(cfg types.CategoryConfig) string {
	if p, ok := strings.CutPrefix(cfg.URL, "file://"); ok {
		return p
	}
	return filepath.Join(f.dir, Slug(cfg.Key())+".html")
}

// FetchCategory parses the saved page of cfg.
func (f *HTMLFetcher) FetchCategory(ctx context.Context, cfg types.CategoryConfig) ([]types.RawPageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := f.PagePath(cfg)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening saved page: %w", err)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ParseDocument(doc)
}

// ParseDocument extracts raw records from a loadout page.
func ParseDocument(doc *goquery.Document) ([]types.RawPageRecord, error) {
	list := doc.Find(selLoadoutList)
	if list.Length() == 0 {
		return nil, errors.New("loadout list not found")
	}

	var records []types.RawPageRecord
	list.Find(selContainer).Each(func(_ int, s *goquery.Selection) {
		rec := types.RawPageRecord{
			Name:  s.Find(selName).First().Text(),
			Lines: textLines(s.Find(selDetail).First().Nodes),
		}
		if src, ok := s.Find(selImage).First().Attr("src"); ok {
			rec.Image = &src
		}
		records = append(records, rec)
	})
	return records, nil
}

// textLines returns the trimmed, non-blank text of every text node under
// nodes in document order. Each text node starts a new line, matching how
// a browser renders block children.
func textLines(nodes []*html.Node) []string {
	lines := []string{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			lines = append(lines, splitLines(n.Data)...)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return lines
}
