//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search runs a catalog query taken from the Q environment variable.
func Search() error {
	q := os.Getenv("Q")
	if q == "" {
		return fmt.Errorf("set Q to the weapon to search for, e.g. Q=kar mage search")
	}
	mg.Deps(Build)
	return sh.RunV(binPath, "search", q)
}

// Serve starts the query server with snapshot hot reload.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "serve", "--watch")
}
