package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redline/internal/config"
	"redline/internal/diff"
	"redline/internal/provider"
	"redline/internal/refine"
	"redline/internal/rules"
	"redline/internal/store"
)

var (
	refineFile      string
	refineMessageID string
	refineVoice     string
	refineRules     []string
	refineCustom    []string
	refineShowDiff  bool
	refineChangelog bool
)

var refineCmd = &cobra.Command{
	Use:   "refine [text]",
	Short: "Refine a block of text under the configured rules",
	Long: `Refine sends the input through the full pipeline: protected regions are
stripped, the rule set is compiled, point of view is detected or taken from
--voice, the generation service is called once, and the tagged reply is
parsed, restored, and diffed against the original.

Input comes from --file, a positional argument, or stdin. The rewritten
text goes to stdout; the change log and diff go to stderr so the output
stays pipeable.`,
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().StringVarP(&refineFile, "file", "f", "", "read input from a file instead of stdin")
	refineCmd.Flags().StringVar(&refineMessageID, "message-id", "", "persist original and revision under this message id")
	refineCmd.Flags().StringVar(&refineVoice, "voice", "", "declare the point of view (first, second, third, first_and_second)")
	refineCmd.Flags().StringSliceVar(&refineRules, "rule", nil, "enable only these built-in rules (repeatable)")
	refineCmd.Flags().StringArrayVar(&refineCustom, "custom", nil, "add a custom rule line (repeatable, ordered)")
	refineCmd.Flags().BoolVar(&refineShowDiff, "diff", false, "print the word-level diff to stderr")
	refineCmd.Flags().BoolVar(&refineChangelog, "changelog", true, "print the change log to stderr")
}

func runRefine(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	text, err := readInput(args, refineFile)
	if err != nil {
		return err
	}

	set := ruleSetFromConfig(cfg)
	if len(refineRules) > 0 {
		set.Builtin = map[string]bool{}
		for _, key := range refineRules {
			if !rules.ValidKey(key) {
				return fmt.Errorf("unknown rule %q", key)
			}
			set.Builtin[key] = true
		}
	}
	for _, line := range refineCustom {
		set.Custom = append(set.Custom, rules.Custom{Text: line, Enabled: true})
	}

	voice := declaredVoice(cfg.Pov.Declared)
	if refineVoice != "" {
		voice = declaredVoice(refineVoice)
		if voice == "" {
			return fmt.Errorf("unknown voice %q (valid: first, second, third, first_and_second)", refineVoice)
		}
	}

	client, err := provider.New(ctx, provider.Options{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.TimeoutDuration(),
	})
	if err != nil {
		return err
	}

	refiner := refine.New(client,
		refine.WithTimeout(cfg.LLM.TimeoutDuration()),
		refine.WithDetector(detectorFromConfig(cfg.Pov)),
		refine.WithLogger(logger),
	)

	result, err := refiner.Refine(ctx, refine.Request{Text: text, Rules: set, Voice: voice})
	if err != nil {
		return err
	}

	if refineMessageID != "" {
		if err := persistResult(cfg, refineMessageID, result); err != nil {
			logger.Warn("failed to persist refinement", zap.String("message_id", refineMessageID), zap.Error(err))
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), result.Refined)
	if result.Changelog != "" && refineChangelog {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n--- changelog ---\n%s\n", result.Changelog)
	}
	if refineShowDiff {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n--- diff ---\n%s\n", renderSegments(result.Segments))
	}
	if !diff.HasChanges(result.Segments) {
		fmt.Fprintln(cmd.ErrOrStderr(), "\nno changes")
	}
	return nil
}

// persistResult records the undo original and the review revision for a
// message id. Store failures are reported but never fail the refinement.
func persistResult(cfg *config.Config, messageID string, result *refine.Result) error {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveOriginal(messageID, result.Original); err != nil {
		return err
	}
	return st.SaveRevision(messageID, result.Original, result.Changelog)
}
