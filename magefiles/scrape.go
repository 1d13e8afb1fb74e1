//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Scrape rebuilds the catalog snapshot from the live site. Set PAGES to a
// directory of saved pages to build offline instead.
func Scrape() error {
	mg.Deps(Init, Build)
	args := []string{"build"}
	if dir := os.Getenv("PAGES"); dir != "" {
		args = append(args, "--source", "html", "--html-dir", dir)
	}
	return sh.RunV(binPath, args...)
}
