//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	jetOutput          = "gen"
	sqliteFileLocation = "todo.sqlite"
	serverBin          = "./bin/todoserver"
	serverConfigPath   = "configs/server.toml"
)

const (
	toolsDir     = "tools/"
	toolsModfile = toolsDir + "go.mod"
	toolsBinDir  = toolsDir + "bin/"
	lintTool     = toolsBinDir + "golangci-lint"
	jetTool      = toolsBinDir + "jet"
)

func goModDownload() error {
	return sh.Run("go", "mod", "download")
}

// Build builds server binary
func Build() error {
	mg.Deps(goModDownload)
	return sh.RunWith(map[string]string{
		"CGO_ENABLED": "1",
	}, "go", "build", "-o", serverBin, "./cmd")
}

// Run applies migrations and starts server
func Run() error {
	mg.Deps(Build)
	if err := sh.Run(serverBin, "migrate", "--config", serverConfigPath); err != nil {
		return err
	}
	return sh.Run(serverBin, "serve", "--config", serverConfigPath)
}

// Test runs unit and http tests
func Test() error {
	return sh.RunWith(map[string]string{
		"CGO_ENABLED": "1",
	}, "go", "test", "-race", "./...")
}

// GenJet regenerates gen/ from a migrated database
func GenJet() error {
	mg.Deps(Build, buildJetTool)
	if _, err := os.Stat(sqliteFileLocation); os.IsNotExist(err) {
		if err := sh.RunWith(map[string]string{"SQLITE_FILE": sqliteFileLocation}, serverBin, "migrate", "--config", serverConfigPath); err != nil {
			return err
		}
	}
	return sh.Run(jetTool, "-source", "sqlite", "-dsn", sqliteFileLocation, "-path", jetOutput)
}

func buildJetTool() error {
	return sh.RunWith(map[string]string{
		"CGO_ENABLED": "1",
	}, "go", "build", "-modfile", toolsModfile, "-o", jetTool, "github.com/go-jet/jet/v2/cmd/jet")
}

func Lint() error {
	mg.Deps(buildLintTool)
	return sh.Run(lintTool, "run", "./...")
}

func buildLintTool() error {
	return sh.Run(
		"go", "build",
		"-modfile", toolsModfile,
		"-o", lintTool,
		"github.com/golangci/golangci-lint/cmd/golangci-lint",
	)
}
