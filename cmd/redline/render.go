package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"redline/internal/config"
	"redline/internal/diff"
	"redline/internal/pov"
	"redline/internal/rules"
)

// renderSegments formats an edit script for terminal review: equal runs pass
// through, deletions wrap in [-...-], insertions in {+...+}.
func renderSegments(segments []diff.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case diff.Delete:
			b.WriteString("[-")
			b.WriteString(seg.Text)
			b.WriteString("-]")
		case diff.Insert:
			b.WriteString("{+")
			b.WriteString(seg.Text)
			b.WriteString("+}")
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// readInput resolves the text to operate on: an explicit file, a positional
// argument, or stdin when neither is given.
func readInput(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// ruleSetFromConfig maps the config file's rule section onto a rule set. An
// absent builtin section keeps everything enabled; explicit entries override
// per key.
func ruleSetFromConfig(cfg *config.Config) rules.Set {
	set := rules.DefaultSet()
	for key, enabled := range cfg.Rules.Builtin {
		if rules.ValidKey(key) {
			set.Builtin[key] = enabled
		}
	}
	for _, c := range cfg.Rules.Custom {
		set.Custom = append(set.Custom, rules.Custom{Text: c.Text, Enabled: c.Enabled})
	}
	return set
}

// declaredVoice maps the config's declared point of view onto a class.
// "auto", empty, and anything unrecognized mean run the detector.
func declaredVoice(declared string) pov.Class {
	switch pov.Class(strings.ToLower(strings.TrimSpace(declared))) {
	case pov.First:
		return pov.First
	case pov.FirstAndSecond:
		return pov.FirstAndSecond
	case pov.Second:
		return pov.Second
	case pov.Third:
		return pov.Third
	default:
		return ""
	}
}

// detectorFromConfig builds a detector from the config thresholds, keeping
// the defaults for unset fields.
func detectorFromConfig(cfg config.PovConfig) pov.Detector {
	d := pov.New()
	if cfg.MinPronouns > 0 {
		d.MinPronouns = cfg.MinPronouns
	}
	if cfg.MixedShare > 0 {
		d.MixedShare = cfg.MixedShare
	}
	return d
}
