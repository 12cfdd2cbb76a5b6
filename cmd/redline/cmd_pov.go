package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redline/internal/config"
	"redline/internal/protect"
)

var povFile string

var povCmd = &cobra.Command{
	Use:   "pov [text]",
	Short: "Detect the point of view of a text",
	Long: `Pov runs the pronoun-frequency classifier on the input and prints the
detected class: first, second, third, first_and_second, or undetermined.
Protected regions (code fences, markup, tagged blocks) are stripped before
counting, exactly as the refine pipeline does.`,
	RunE: runPov,
}

func init() {
	povCmd.Flags().StringVarP(&povFile, "file", "f", "", "read input from a file instead of stdin")
}

func runPov(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	text, err := readInput(args, povFile)
	if err != nil {
		return err
	}

	stripped, _ := protect.Strip(text)
	detector := detectorFromConfig(cfg.Pov)
	fmt.Fprintln(cmd.OutOrStdout(), string(detector.Detect(stripped)))
	return nil
}
