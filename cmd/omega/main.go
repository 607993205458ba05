package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Drivers selectable through omega.yml.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "omega",
		Short: "Omega entity manager tooling",
		Long: `Omega is an object-relational mapping engine for Go. This tool inspects
configuration and runs a self-contained demonstration against a local database.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(demoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
