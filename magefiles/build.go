//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the tracker project using Mage.
//
// Usage:
//
//	mage build          Compile tracker binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests with the race detector
//	mage test:property  Run the property tests with more iterations
//	mage test:postgres  Run the PostgreSQL backend tests (needs TRACKER_TEST_PG_DSN)
//	mage test:smoke     Build the binary and drive it through a short session
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install tracker to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "tracker"
	binaryDir  = "bin"
	cmdDir     = "./cmd/tracker"
)

// Build compiles the tracker binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
