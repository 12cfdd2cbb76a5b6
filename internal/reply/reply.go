// Package reply extracts the change log and rewritten text from a raw
// generation-engine reply using the tagged text protocol:
// [CHANGELOG]...[/CHANGELOG] followed by [REFINED]...[/REFINED],
// case-insensitive. Extraction never fails; every branch degrades to a
// usable result.
package reply

import (
	"regexp"
	"strings"
)

// Parsed is the result of extracting a reply. Changelog is empty when the
// engine supplied none; Refined is never empty unless the raw reply itself
// was blank.
type Parsed struct {
	Changelog string
	Refined   string
}

var (
	refinedRe       = regexp.MustCompile(`(?is)\[REFINED\](.*?)\[/REFINED\]`)
	changelogRe     = regexp.MustCompile(`(?is)\[CHANGELOG\](.*?)\[/CHANGELOG\]`)
	openChangelogRe = regexp.MustCompile(`(?i)\[CHANGELOG\]`)
	blankLineRe     = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)
	markerRe        = regexp.MustCompile(`(?i)\[/?(?:REFINED|CHANGELOG)\]`)
)

// Parse runs the priority-ordered extraction chain, stopping at the first
// branch that succeeds:
//
//  1. Closed [REFINED] pair: its content is the rewritten text, a closed
//     [CHANGELOG] pair anywhere supplies the change log, everything else
//     (reasoning, stray commentary) is discarded.
//  2. Closed [CHANGELOG] pair: its content is the change log, everything
//     after the closing tag is the rewritten text.
//  3. Unclosed [CHANGELOG]: the remainder is split at the first blank line
//     into change log and rewritten text.
//  4. Fallback: the whole reply, trimmed, is the rewritten text.
//
// Leftover protocol markers are stripped from the rewritten text regardless
// of which branch fired.
func Parse(raw string) Parsed {
	parsed := extract(raw)
	parsed.Refined = strings.TrimSpace(markerRe.ReplaceAllString(parsed.Refined, ""))
	if parsed.Refined == "" {
		// Nothing structured could be recovered; hand back the reply as-is.
		parsed.Refined = strings.TrimSpace(markerRe.ReplaceAllString(raw, ""))
	}
	return parsed
}

func extract(raw string) Parsed {
	if m := refinedRe.FindStringSubmatch(raw); m != nil {
		parsed := Parsed{Refined: strings.TrimSpace(m[1])}
		if cm := changelogRe.FindStringSubmatch(raw); cm != nil {
			parsed.Changelog = strings.TrimSpace(cm[1])
		}
		return parsed
	}

	if loc := changelogRe.FindStringSubmatchIndex(raw); loc != nil {
		return Parsed{
			Changelog: strings.TrimSpace(raw[loc[2]:loc[3]]),
			Refined:   strings.TrimSpace(raw[loc[1]:]),
		}
	}

	if loc := openChangelogRe.FindStringIndex(raw); loc != nil {
		rest := raw[loc[1]:]
		if split := blankLineRe.FindStringIndex(rest); split != nil {
			return Parsed{
				Changelog: strings.TrimSpace(rest[:split[0]]),
				Refined:   strings.TrimSpace(rest[split[1]:]),
			}
		}
		// No blank line to split on; treat the remainder as the text.
		return Parsed{Refined: strings.TrimSpace(rest)}
	}

	return Parsed{Refined: strings.TrimSpace(raw)}
}
