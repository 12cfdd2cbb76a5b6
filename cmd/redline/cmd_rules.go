package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redline/internal/config"
	"redline/internal/rules"
)

var rulesCompiled bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the editorial rule set",
	Long: `Rules lists the built-in rule catalogue with its enabled state under the
current config, followed by any custom rules. With --compiled it prints the
exact numbered instruction block the generation service would receive.`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesCompiled, "compiled", false, "print the compiled instruction block")
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	set := ruleSetFromConfig(cfg)

	if rulesCompiled {
		fmt.Fprintln(cmd.OutOrStdout(), rules.Compile(set))
		return nil
	}

	for _, b := range rules.Builtins() {
		mark := " "
		if set.Builtin[b.Key] {
			mark = "x"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-12s %s\n", mark, b.Key, b.Text)
	}
	for _, c := range set.Custom {
		mark := " "
		if c.Enabled {
			mark = "x"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-12s %s\n", mark, "custom", c.Text)
	}
	return nil
}
