package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	openmem "github.com/goblincore/openmem"
	"github.com/goblincore/openmem/internal/obslog"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:     "openmem",
	Short:   "Persistent cognitive memory store for an AI assistant",
	Version: Version,
	Long: `openmem stores short textual memories, links them into a graph,
and answers natural-language recall queries with a ranked list of the
most relevant memories.

Examples:
  openmem add "We chose SQLite over Postgres for simplicity" --type decision
  openmem recall "why did we pick SQLite?"
  openmem link <source-id> <target-id> --rel supports --weight 0.8
  openmem stats`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: ~/.openmem/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openEngine loads config and opens the engine. Callers are
// responsible for calling Close on the returned engine.
func openEngine() (*openmem.Engine, error) {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return nil, err
	}

	obslog.Configure(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	return openmem.Init(openmem.Config{
		DBPath:      cfg.DBPath,
		MaxHops:     cfg.MaxHops,
		DecayPerHop: cfg.DecayPerHop,
	})
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
