package main

import (
	"os"

	"github.com/dyluth/careersync/cmd/careersync/commands"
	"github.com/joho/godotenv"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// A missing .env file is fine; variables may come from the environment
	_ = godotenv.Load()

	commands.SetVersionInfo(version, commit, date)

	// Errors are printed directly by the printer package with color formatting
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
