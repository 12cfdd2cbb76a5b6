package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"redline/internal/diff"
)

var diffCmd = &cobra.Command{
	Use:   "diff <original-file> <refined-file>",
	Short: "Word-level diff between two text files",
	Long: `Diff prints the word-level edit script between two files using the same
algorithm the refine pipeline uses for review: deletions wrapped in [-...-],
insertions in {+...+}.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	original, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}
	refined, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read refined: %w", err)
	}

	segments := diff.Compute(string(original), string(refined))
	fmt.Fprintln(cmd.OutOrStdout(), renderSegments(segments))
	if !diff.HasChanges(segments) {
		fmt.Fprintln(cmd.ErrOrStderr(), "no changes")
	}
	return nil
}
