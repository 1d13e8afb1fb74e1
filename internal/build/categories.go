// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package build

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// categoryFile is the layout of a standalone category list.
type categoryFile struct {
	Categories []types.CategoryConfig `yaml:"categories"`
}

// LoadCategories reads a YAML category list from path and validates it.
func LoadCategories(path string) ([]types.CategoryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}

	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing categories %s: %w", path, err)
	}
	if err := ValidateCategories(file.Categories); err != nil {
		return nil, fmt.Errorf("categories %s: %w", path, err)
	}
	return file.Categories, nil
}
