package main

import (
	"fmt"

	"github.com/spf13/cobra"

	openmem "github.com/goblincore/openmem"
)

var (
	linkRelType string
	linkWeight  float64
)

var linkCmd = &cobra.Command{
	Use:   "link <source-id> <target-id>",
	Short: "Create a relationship edge between two memories",
	Long: `Create a directed, typed, weighted edge between two existing memories.

Examples:
  openmem link <source-id> <target-id> --rel supports --weight 0.8
  openmem link <source-id> <target-id> --rel contradicts`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEngine()
		if err != nil {
			fatalf("openmem: %v", err)
		}
		defer e.Close()

		edge, err := e.Link(args[0], args[1], openmem.RelType(linkRelType), linkWeight)
		if err != nil {
			fatalf("openmem: link: %v", err)
		}
		fmt.Println(edge.ID)
	},
}

func init() {
	linkCmd.Flags().StringVar(&linkRelType, "rel", "mentions", "relationship type: mentions, supports, contradicts, depends_on, same_as")
	linkCmd.Flags().Float64Var(&linkWeight, "weight", 0.5, "edge weight, 0.0-1.0")
	rootCmd.AddCommand(linkCmd)
}
