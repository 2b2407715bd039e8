package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// bgfixture seed: print the effective seed as YAML, ready to edit and feed
// back through --seed.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Print the effective seed data as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlags(cmd); err != nil {
			return err
		}
		seed, err := loadSeed()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer f.Close()
			out = f
		}
		return seed.Encode(out)
	},
}

func init() {
	seedCmd.Flags().StringP("out", "o", "", "write to a file instead of stdout")
}
