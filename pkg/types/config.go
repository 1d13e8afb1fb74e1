package types

import "time"

// SourceKind selects the scraping collaborator used by the build stage.
type SourceKind string

const (
	SourceBrowser SourceKind = "browser"
	SourceHTML    SourceKind = "html"
)

// BrowserConfig holds settings for the headless-browser scraper.
type BrowserConfig struct {
	// Headless runs Chromium without a window (default true).
	Headless bool `json:"headless" yaml:"headless" mapstructure:"headless"`

	// Bin is an explicit browser binary. Empty lets the launcher pick or
	// download one.
	Bin string `json:"bin,omitempty" yaml:"bin,omitempty" mapstructure:"bin"`

	// ControlURL connects to an already running browser instead of launching.
	ControlURL string `json:"control_url,omitempty" yaml:"control_url,omitempty" mapstructure:"control_url"`

	// Timeout bounds page load and waits for the loadout list (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// SettleDelay is the pause after the loadout list appears (default 3s).
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay" mapstructure:"settle_delay"`

	// TabDelay is the pause after clicking a category tab (default 2s).
	TabDelay time.Duration `json:"tab_delay" yaml:"tab_delay" mapstructure:"tab_delay"`

	// ItemDelay is the pause after expanding each loadout (default 500ms).
	ItemDelay time.Duration `json:"item_delay" yaml:"item_delay" mapstructure:"item_delay"`
}

// BuildConfig holds settings for the catalog build stage.
type BuildConfig struct {
	// Concurrency bounds how many categories are scraped at once (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// Source selects the scraper: browser or html.
	Source SourceKind `json:"source" yaml:"source" mapstructure:"source"`

	// HTMLDir holds saved category pages for the html source.
	HTMLDir string `json:"html_dir,omitempty" yaml:"html_dir,omitempty" mapstructure:"html_dir"`

	Browser BrowserConfig `json:"browser" yaml:"browser" mapstructure:"browser"`
}

// SnapshotBackend identifies where the catalog snapshot is stored.
type SnapshotBackend string

const (
	BackendJSON   SnapshotBackend = "json"
	BackendSQLite SnapshotBackend = "sqlite"
)

// SnapshotConfig holds settings for catalog persistence.
type SnapshotConfig struct {
	// Backend selects json (default) or sqlite.
	Backend SnapshotBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the snapshot file (default all_guns_database.json).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// SearchConfig holds settings for query commands.
type SearchConfig struct {
	// MaxResults is the default number of search results (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// TopLimit is the default length of a category top list (default 10).
	TopLimit int `json:"top_limit" yaml:"top_limit" mapstructure:"top_limit"`
}

// ServeConfig holds settings for the query server.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Watch reloads the catalog when the snapshot file changes.
	Watch bool `json:"watch" yaml:"watch" mapstructure:"watch"`

	// AllowedOrigins lists CORS origins. Empty allows none.
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty" mapstructure:"allowed_origins"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Build      BuildConfig      `json:"build" yaml:"build" mapstructure:"build"`
	Snapshot   SnapshotConfig   `json:"snapshot" yaml:"snapshot" mapstructure:"snapshot"`
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Serve      ServeConfig      `json:"serve" yaml:"serve" mapstructure:"serve"`
	Categories []CategoryConfig `json:"categories" yaml:"categories" mapstructure:"categories"`
}

const (
	urlResurgence  = "https://wzstats.gg/warzone/meta/resurgence"
	urlVerdansk    = "https://wzstats.gg/"
	urlMultiplayer = "https://wzstats.gg/bo6/meta"
)

func tab(label string) string {
	return "a.menu-item:has-text('" + label + "')"
}

// DefaultCategories returns the category set built when no configuration
// names one: three ranges for each Warzone mode and the weapon classes of
// multiplayer.
func DefaultCategories() []CategoryConfig {
	var cats []CategoryConfig
	for _, m := range []struct{ mode, url string }{
		{"Resurgence", urlResurgence},
		{"Verdansk", urlVerdansk},
	} {
		cats = append(cats,
			CategoryConfig{Mode: m.mode, Range: "Long Range", URL: m.url},
			CategoryConfig{Mode: m.mode, Range: "Close Range", URL: m.url, Selector: tab("Close range")},
			CategoryConfig{Mode: m.mode, Range: "Sniper", URL: m.url, Selector: tab("Sniper")},
		)
	}
	for _, class := range []string{
		"Assault Rifle", "SMG", "Shotgun", "LMG", "Marksman Rifle", "Sniper", "Pistol",
	} {
		cats = append(cats, CategoryConfig{
			Mode: "Multiplayer", Range: class, URL: urlMultiplayer, Selector: tab(class),
		})
	}
	return cats
}

// DefaultPipelineConfig returns the configuration used when neither a config
// file nor flags override a setting.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Build: BuildConfig{
			Concurrency: 1,
			Source:      SourceBrowser,
			Browser: BrowserConfig{
				Headless:    true,
				Timeout:     60 * time.Second,
				SettleDelay: 3 * time.Second,
				TabDelay:    2 * time.Second,
				ItemDelay:   500 * time.Millisecond,
			},
		},
		Snapshot: SnapshotConfig{
			Backend: BackendJSON,
			Path:    "all_guns_database.json",
		},
		Search: SearchConfig{
			MaxResults: 5,
			TopLimit:   10,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
		Categories: DefaultCategories(),
	}
}
