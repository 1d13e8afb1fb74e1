// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the loadout-engine pipeline:
// raw scrape output, normalized weapon records, the catalog, and stage
// configuration.
package types

// CategorySeparator joins a mode and a range into a category key.
const CategorySeparator = "_"

// UnknownDate is the Updated value of a record whose page carried no
// parseable date.
const UnknownDate = "Unknown"

// CategoryKey returns the lookup key for a (mode, range) pair,
// e.g. "Resurgence_Long Range".
func CategoryKey(mode, rng string) string {
	return mode + CategorySeparator + rng
}

// RawPageRecord is the unnormalized text bundle a scraper extracts for one
// weapon entry on a category page.
type RawPageRecord struct {
	// Name is the title fragment (the weapon name element). May be blank.
	Name string `json:"name" yaml:"name"`

	// Lines are the body text lines of the loadout detail block in page order.
	Lines []string `json:"lines" yaml:"lines"`

	// Image is the illustrative image URL, nil when the page had none.
	Image *string `json:"image,omitempty" yaml:"image,omitempty"`
}

// WeaponRecord is a canonical catalog entry. Field names on the wire follow
// the snapshot format: the name is "gun" and the attachment list is "class".
type WeaponRecord struct {
	// Rank is the 1-based position within its category at build time.
	Rank int `json:"rank" yaml:"rank"`

	// Mode is the game mode label (e.g. "Resurgence").
	Mode string `json:"mode" yaml:"mode"`

	// Range is the sub-label within the mode (e.g. "Sniper", "SMG").
	Range string `json:"range" yaml:"range"`

	// Name is the weapon display name and the primary search target.
	Name string `json:"gun" yaml:"gun"`

	// Attachments holds "<part> — <type>" or "<part>" entries in page order.
	Attachments []string `json:"class" yaml:"class"`

	// Image is an optional illustrative asset URL.
	Image *string `json:"image" yaml:"image"`

	// Updated is the last-updated display string, or UnknownDate.
	Updated string `json:"updated" yaml:"updated"`
}

// Key returns the category key of the record.
func (r WeaponRecord) Key() string {
	return CategoryKey(r.Mode, r.Range)
}

// CategoryConfig names one category to build and the locator the scraper
// uses to reach it.
type CategoryConfig struct {
	// Mode is the game mode label.
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Range is the sub-label within the mode.
	Range string `json:"range" yaml:"range" mapstructure:"range"`

	// URL is the page listing the mode's loadouts.
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// Selector locates the tab to click before reading the page. Empty means
	// the default tab. The form "css:has-text('Label')" matches by text.
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty" mapstructure:"selector"`
}

// Key returns the category key of the config.
func (c CategoryConfig) Key() string {
	return CategoryKey(c.Mode, c.Range)
}
