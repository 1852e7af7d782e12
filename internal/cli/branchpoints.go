package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// branchpointsFlagOutput is the --output flag for the branchpoints command.
var branchpointsFlagOutput string

// branchpointsCmd implements "rebuild branchpoints": print the baseline
// branch pinned for every branchpoint a prior run has seen, as recorded in
// $OUTPUT/branchpoints.txt.
var branchpointsCmd = &cobra.Command{
	Use:   "branchpoints",
	Short: "Print the baseline branch recorded from a prior run",
	Long: `Print the contents of $OUTPUT/branchpoints.txt: one "Branchpoint.value"
line per branchpoint the engine has encountered, recording which value is
the baseline for that branchpoint.

This file does not exist until a workflow has been run at least once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(branchpointsFlagOutput, "branchpoints.txt")
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s does not exist; no workflow has been run yet.\n", path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		_, err = io.Copy(cmd.OutOrStdout(), f)
		return err
	},
}

func init() {
	branchpointsCmd.Flags().StringVarP(&branchpointsFlagOutput, "output", "o", "output", "Output directory")
	rootCmd.AddCommand(branchpointsCmd)
}
