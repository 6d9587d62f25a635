//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// envPGDSN names the database the postgres backend tests connect to.
const envPGDSN = "TRACKER_TEST_PG_DSN"

// propertyPkgs hold the rapid property tests.
var propertyPkgs = []string{
	"./internal/history/...",
	"./internal/store/...",
	"./internal/codec/...",
}

// Test groups test targets.
type Test mg.Namespace

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs every test with the race detector.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Property runs the property tests with 2000 checks each.
func (Test) Property() error {
	args := append([]string{"test", "-run", "Property"}, propertyPkgs...)
	args = append(args, "-args", "-rapid.checks=2000")
	return sh.RunV(binGo, args...)
}

// Postgres runs the postgres backend tests. TRACKER_TEST_PG_DSN must be set.
func (Test) Postgres() error {
	if os.Getenv(envPGDSN) == "" {
		return fmt.Errorf("%s is not set", envPGDSN)
	}
	return sh.RunV(binGo, "test", "-v", "-run", "Postgres", "./internal/storage/...")
}

// Smoke builds the binary and runs a short session against a scratch
// directory.
func (Test) Smoke() error {
	mg.Deps(Build)

	dir, err := os.MkdirTemp("", "tracker-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	bin, err := filepath.Abs(filepath.Join(binaryDir, binaryName))
	if err != nil {
		return err
	}
	base := []string{
		"--config-dir", filepath.Join(dir, "config"),
		"--data-dir", filepath.Join(dir, "data"),
	}
	steps := [][]string{
		{"init"},
		{"epic", "create", "--name", "smoke"},
		{"subtask", "create", "--epic", "1", "--name", "step", "--status", "done"},
		{"epic", "get", "1"},
		{"history"},
	}
	for _, step := range steps {
		if err := sh.RunV(bin, append(base, step...)...); err != nil {
			return fmt.Errorf("tracker %s: %w", strings.Join(step, " "), err)
		}
	}

	out, err := sh.Output(bin, append(base, "--json", "epic", "get", "1")...)
	if err != nil {
		return err
	}
	if !strings.Contains(out, `"status": "DONE"`) {
		return fmt.Errorf("epic status not derived from subtasks:\n%s", out)
	}
	return nil
}
