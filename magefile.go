//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified.
var Default = Build

var binaries = []string{"api", "webhookctl"}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "-cover", "./...")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Build compiles the binaries into ./bin, stamping the commit hash.
func Build() error {
	mg.Deps(Lint)

	hash, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil || strings.TrimSpace(hash) == "" {
		hash = "dev"
	}

	ldflags := fmt.Sprintf("-s -w -X main.buildTagRuntime=%s", strings.TrimSpace(hash))
	for _, name := range binaries {
		if err := sh.RunWith(map[string]string{"CGO_ENABLED": "0"},
			"go", "build", "-ldflags", ldflags, "-o", "bin/"+name, "./cmd/"+name,
		); err != nil {
			return err
		}
	}

	return nil
}

// Run starts the API with the local .env.
func Run() error {
	mg.Deps(Build)
	return sh.RunV("./bin/api")
}

// Clean removes the build artifacts.
func Clean() error {
	return os.RemoveAll("bin")
}
