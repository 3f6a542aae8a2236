//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Preprocess parses a schedule report and writes its correction file.
func Preprocess(report string) error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "preprocess", report)
}

// Compile renders the post queue for a preprocessed report.
func Compile(report string) error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "compile", report)
}

// Status prints the compiled runs recorded in the ledger.
func Status() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "status")
}
