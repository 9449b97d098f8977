//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "cacheconv"

// Default target to run when none is specified
var Default = Build

// Build compiles the cacheconv binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/cacheconv")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs all unit tests with the race detector
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Install builds and installs cacheconv into ~/go/bin
func Install() error {
	mg.Deps(Test)

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	binDir := filepath.Join(home, "go", "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return err
	}

	return sh.RunV("go", "build", "-o", filepath.Join(binDir, binary), "./cmd/cacheconv")
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binary)
}
