package refine

import (
	"fmt"
	"strings"

	"redline/internal/pov"
)

// systemPrompt is the fixed instruction sent with every refinement request.
// It pins the tagged reply protocol and placeholder handling; the editorial
// rules themselves travel in the user payload.
const systemPrompt = `You are a precise text editor. Rewrite the text you are given according to the numbered rules, changing nothing beyond what the rules require.

Reply in exactly this format:
[CHANGELOG]
- one line per meaningful edit, naming the rule that motivated it
[/CHANGELOG]
[REFINED]
the full rewritten text
[/REFINED]

Tokens of the form [PROTECTED_0], [PROTECTED_1], and so on mark protected content. Reproduce every one of them verbatim, in place. Never remove, alter, or reorder them.`

// povInstructions maps a detected or declared point of view to the guidance
// line included in the user payload.
var povInstructions = map[pov.Class]string{
	pov.First:          "The text is written in first person; keep it in first person.",
	pov.Second:         "The text is written in second person; keep it in second person.",
	pov.Third:          "The text is written in third person; keep it in third person.",
	pov.FirstAndSecond: "The text mixes first and second person; preserve that mix.",
}

// buildUserPrompt assembles the user-role payload: compiled rules, the
// point-of-view instruction when one applies, and the protected-stripped
// text to rewrite.
func buildUserPrompt(ruleBlock string, voice pov.Class, stripped string) string {
	var b strings.Builder

	b.WriteString("Rules:\n")
	b.WriteString(ruleBlock)
	b.WriteString("\n")

	if instruction, ok := povInstructions[voice]; ok {
		fmt.Fprintf(&b, "\n%s\n", instruction)
	}

	b.WriteString("\nText to rewrite:\n")
	b.WriteString(stripped)
	return b.String()
}
