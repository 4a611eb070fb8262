package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reinforceCmd = &cobra.Command{
	Use:   "reinforce <id>",
	Short: "Boost a memory's strength after it proved useful",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEngine()
		if err != nil {
			fatalf("openmem: %v", err)
		}
		defer e.Close()

		if err := e.Reinforce(args[0]); err != nil {
			fatalf("openmem: reinforce: %v", err)
		}
	},
}

var supersedeCmd = &cobra.Command{
	Use:   "supersede <old-id> <new-id>",
	Short: "Mark an old memory superseded by a newer one",
	Long: `Marks old-id superseded and links new-id --same_as--> old-id.

Examples:
  openmem supersede <old-id> <new-id>`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEngine()
		if err != nil {
			fatalf("openmem: %v", err)
		}
		defer e.Close()

		if err := e.Supersede(args[0], args[1]); err != nil {
			fatalf("openmem: supersede: %v", err)
		}
	},
}

var contradictCmd = &cobra.Command{
	Use:   "contradict <a-id> <b-id>",
	Short: "Record that two memories contradict each other",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEngine()
		if err != nil {
			fatalf("openmem: %v", err)
		}
		defer e.Close()

		if err := e.Contradict(args[0], args[1]); err != nil {
			fatalf("openmem: contradict: %v", err)
		}
	},
}

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Apply natural exponential decay to every memory's strength",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEngine()
		if err != nil {
			fatalf("openmem: %v", err)
		}
		defer e.Close()

		if err := e.DecayAll(); err != nil {
			fatalf("openmem: decay: %v", err)
		}
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics over the whole memory store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEngine()
		if err != nil {
			fatalf("openmem: %v", err)
		}
		defer e.Close()

		s, err := e.Stats()
		if err != nil {
			fatalf("openmem: stats: %v", err)
		}

		fmt.Printf("memories:     %d\n", s.MemoryCount)
		fmt.Printf("edges:        %d\n", s.EdgeCount)
		fmt.Printf("avg_strength: %.3f\n", s.AvgStrength)
		fmt.Printf("active:       %d\n", s.ActiveCount)
		fmt.Printf("superseded:   %d\n", s.SupersededCount)
		fmt.Printf("contradicted: %d\n", s.ContradictedCount)
	},
}

func init() {
	rootCmd.AddCommand(reinforceCmd, supersedeCmd, contradictCmd, decayCmd, statsCmd)
}
