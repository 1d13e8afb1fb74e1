// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// RodFetcher scrapes live category pages in headless Chromium. One browser
// is shared by all categories; each category gets its own incognito
// context.
type RodFetcher struct {
	cfg    types.BrowserConfig
	logger *zap.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
}

// NewRodFetcher returns a fetcher that connects to the browser on first use.
func NewRodFetcher(cfg types.BrowserConfig, logger *zap.Logger) *RodFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodFetcher{cfg: cfg, logger: logger}
}

func (f *RodFetcher) connect() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser != nil {
		return f.browser, nil
	}

	controlURL := f.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(f.cfg.Headless)
		if f.cfg.Bin != "" {
			l = l.Bin(f.cfg.Bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launching browser: %w", err)
		}
		f.launched = l
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if f.launched != nil {
			f.launched.Cleanup()
			f.launched = nil
		}
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	f.logger.Debug("browser connected", zap.String("control_url", controlURL))
	f.browser = browser
	return browser, nil
}

// Close shuts the browser down if this fetcher launched or connected it.
func (f *RodFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launched != nil {
		f.launched.Cleanup()
		f.launched = nil
	}
	return err
}

// FetchCategory opens cfg.URL, selects the category tab when cfg.Selector
// names one, expands every loadout, and reads its name, detail lines, and
// image.
func (f *RodFetcher) FetchCategory(ctx context.Context, cfg types.CategoryConfig) ([]types.RawPageRecord, error) {
	browser, err := f.connect()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	defer incognito.Close()

	page, err := incognito.Context(ctx).Page(proto.TargetCreateTarget{URL: cfg.URL})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.URL, err)
	}
	defer page.Close()

	p := page
	if f.cfg.Timeout > 0 {
		p = page.Timeout(f.cfg.Timeout)
	}

	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.URL, err)
	}
	if _, err := p.Element(selLoadoutList); err != nil {
		return nil, fmt.Errorf("waiting for loadout list: %w", err)
	}
	if err := sleep(ctx, f.cfg.SettleDelay); err != nil {
		return nil, err
	}

	if cfg.Selector != "" {
		if err := f.selectTab(ctx, p, cfg.Selector); err != nil {
			return nil, err
		}
	}

	containers, err := p.Elements(selContainer)
	if err != nil {
		return nil, fmt.Errorf("listing loadouts: %w", err)
	}
	f.logger.Debug("loadouts found", zap.String("category", cfg.Key()), zap.Int("count", len(containers)))

	records := make([]types.RawPageRecord, 0, len(containers))
	for i, el := range containers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := f.readLoadout(ctx, el)
		if err != nil {
			f.logger.Debug("loadout partially read",
				zap.String("category", cfg.Key()), zap.Int("index", i), zap.Error(err))
		}
		records = append(records, rec)
	}
	return records, nil
}

func (f *RodFetcher) selectTab(ctx context.Context, p *rod.Page, selector string) error {
	css, label := ParseSelector(selector)

	var tab *rod.Element
	var err error
	if label != "" {
		tab, err = p.ElementR(css, TextRegex(label))
	} else {
		tab, err = p.Element(css)
	}
	if err != nil {
		return fmt.Errorf("finding tab %q: %w", selector, err)
	}
	if err := tab.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("clicking tab %q: %w", selector, err)
	}
	return sleep(ctx, f.cfg.TabDelay)
}

// readLoadout expands one loadout and reads what it can. The returned
// record holds every part read before an error.
func (f *RodFetcher) readLoadout(ctx context.Context, el *rod.Element) (types.RawPageRecord, error) {
	rec := types.RawPageRecord{Lines: []string{}}

	if err := el.ScrollIntoView(); err != nil {
		return rec, fmt.Errorf("scrolling: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return rec, fmt.Errorf("expanding: %w", err)
	}
	if err := sleep(ctx, f.cfg.ItemDelay); err != nil {
		return rec, err
	}

	if ok, name, err := el.Has(selName); err == nil && ok {
		if text, err := name.Text(); err == nil {
			rec.Name = text
		}
	}

	if ok, detail, err := el.Has(selDetail); err == nil && ok {
		text, err := detail.Text()
		if err != nil {
			return rec, fmt.Errorf("reading detail: %w", err)
		}
		rec.Lines = splitLines(text)
	}

	if ok, img, err := el.Has(selImage); err == nil && ok {
		src, err := img.Attribute("src")
		if err != nil {
			return rec, fmt.Errorf("reading image: %w", err)
		}
		rec.Image = src
	}
	return rec, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
