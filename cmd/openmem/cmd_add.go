package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	addType       string
	addEntities   []string
	addConfidence float64
	addGist       string
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Store a new memory",
	Long: `Store a new memory with the given text.

Examples:
  openmem add "We chose SQLite over Postgres for simplicity" --type decision
  openmem add "The team prefers simple tools" --type preference --entities tools`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := strings.Join(args, " ")

		e, err := openEngine()
		if err != nil {
			fatalf("openmem: %v", err)
		}
		defer e.Close()

		m, err := e.Add(text, addType, addEntities, addConfidence, addGist)
		if err != nil {
			fatalf("openmem: add: %v", err)
		}
		fmt.Println(m.ID)
	},
}

func init() {
	addCmd.Flags().StringVar(&addType, "type", "fact", "memory type: fact, decision, preference, incident, plan, constraint")
	addCmd.Flags().StringSliceVar(&addEntities, "entities", nil, "comma-separated named entities")
	addCmd.Flags().Float64Var(&addConfidence, "confidence", 1.0, "confidence, 0.0-1.0")
	addCmd.Flags().StringVar(&addGist, "gist", "", "optional short summary")
	rootCmd.AddCommand(addCmd)
}
