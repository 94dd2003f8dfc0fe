//go:build mage

// Magefile for go-prreview development tasks
package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/sh"
)

// Test runs the unit test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-short", "./...")
}

// TestFull runs the full suite, including tests that shell out to git.
func TestFull() error {
	return sh.RunV("go", "test", "-race", "-timeout=10m", "./...")
}

// Cover writes a coverage profile and opens the HTML report.
func Cover() error {
	if err := sh.RunV("go", "test", "-short", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Build compiles the binary into ./bin.
func Build() error {
	if err := os.MkdirAll("bin", 0o750); err != nil {
		return err
	}
	fmt.Println("Building bin/go-prreview...")
	return sh.RunV("go", "build", "-o", "bin/go-prreview", "./cmd/go-prreview")
}

// Clean removes build and coverage artifacts.
func Clean() error {
	for _, path := range []string{"bin", "coverage.out"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}
