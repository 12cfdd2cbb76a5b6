// Package rules compiles the configured editorial rule set into the single
// numbered instruction block sent to the generation engine.
package rules

import (
	"fmt"
	"strings"
)

// Builtin is a fixed rule descriptor. The builtins slice is the declared
// order; compilation iterates it directly rather than any map.
type Builtin struct {
	Key  string
	Text string
}

// builtins is the full built-in rule catalogue in declaration order.
var builtins = []Builtin{
	{Key: "grammar", Text: "Correct grammar, spelling, and punctuation errors."},
	{Key: "clarity", Text: "Improve clarity and readability without changing the meaning."},
	{Key: "flow", Text: "Smooth awkward phrasing so sentences flow naturally."},
	{Key: "repetition", Text: "Remove unnecessary repetition of words and phrases."},
	{Key: "tone", Text: "Preserve the original tone and voice of the writing."},
	{Key: "tense", Text: "Keep verb tense consistent throughout."},
	{Key: "length", Text: "Keep the rewritten text close to the original length."},
	{Key: "formatting", Text: "Preserve all markdown and formatting exactly as written."},
}

// fallbackText is substituted when no rule at all is active; the compiled
// instruction list is never empty.
const fallbackText = "Improve the overall quality of the writing."

// Custom is one caller-owned rule. Order within the custom list is
// significant and owned by the caller.
type Custom struct {
	Text    string
	Enabled bool
}

// Set is the full rule selection for one compilation: built-in toggles keyed
// by rule key, plus the ordered custom list.
type Set struct {
	Builtin map[string]bool
	Custom  []Custom
}

// DefaultSet enables every built-in rule and no custom rules.
func DefaultSet() Set {
	enabled := make(map[string]bool, len(builtins))
	for _, b := range builtins {
		enabled[b.Key] = true
	}
	return Set{Builtin: enabled}
}

// Builtins returns a copy of the built-in catalogue in declaration order.
func Builtins() []Builtin {
	out := make([]Builtin, len(builtins))
	copy(out, builtins)
	return out
}

// ValidKey reports whether key names a built-in rule.
func ValidKey(key string) bool {
	for _, b := range builtins {
		if b.Key == key {
			return true
		}
	}
	return false
}

// Compile turns the selection into one instruction block, one rule per line,
// numbered 1..N: enabled built-ins in declaration order, then enabled
// non-blank custom rules in stored order. Pure function of its input.
func Compile(set Set) string {
	var lines []string

	for _, b := range builtins {
		if set.Builtin[b.Key] {
			lines = append(lines, b.Text)
		}
	}
	for _, c := range set.Custom {
		text := strings.TrimSpace(c.Text)
		if c.Enabled && text != "" {
			lines = append(lines, text)
		}
	}

	if len(lines) == 0 {
		lines = append(lines, fallbackText)
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, line)
	}
	return b.String()
}
