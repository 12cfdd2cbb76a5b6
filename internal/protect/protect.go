// Package protect strips regions of a text that must survive rewriting
// unmodified, replacing them with indexed placeholder tokens, and restores
// them afterwards. Protected regions are fenced code blocks, block-level
// structural markup, and upper-case bracket-tagged blocks.
package protect

import (
	"fmt"
	"regexp"
	"strings"
)

// Block is one protected span, keyed by discovery order. Index always
// matches the numeric suffix of the placeholder token that replaced it.
type Block struct {
	Index int
	Raw   string
}

var (
	fenceRe = regexp.MustCompile("(?s)```.*?```")

	// Open tags of the form <name ...>. The matching close is found by the
	// depth-tracking scanner below, since RE2 has no backreferences.
	openTagRe = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9_-]*)((?:\s[^<>]*)?)>`)

	// Opening bracket tags of the form [TAG].
	bracketOpenRe = regexp.MustCompile(`\[([A-Z][A-Z0-9_]*)\]`)

	placeholderRe = regexp.MustCompile(`\[PROTECTED_(\d+)\]`)
)

// reservedTags are block-level tag names always protected regardless of
// punctuation in the name.
var reservedTags = map[string]struct{}{
	"pre":     {},
	"code":    {},
	"script":  {},
	"style":   {},
	"svg":     {},
	"math":    {},
	"details": {},
	"summary": {},
}

// protocolTags are bracket tags owned by the reply protocol; the bracket
// pass never strips them.
var protocolTags = map[string]struct{}{
	"CHANGELOG": {},
	"REFINED":   {},
}

func placeholder(index int) string {
	return fmt.Sprintf("[PROTECTED_%d]", index)
}

// Strip removes protected regions from text in three ordered passes, each
// operating on the output of the previous one so protected content cannot
// nest unexpected matches. Returns the stripped text and the blocks in
// discovery order.
func Strip(text string) (string, []Block) {
	var blocks []Block

	stripped := stripFences(text, &blocks)
	stripped = stripMarkup(stripped, &blocks)
	stripped = stripBracketTags(stripped, &blocks)

	return stripped, blocks
}

// stripFences removes triple-backtick code fences, first open to first
// matching close.
func stripFences(text string, blocks *[]Block) string {
	return fenceRe.ReplaceAllStringFunc(text, func(match string) string {
		return record(blocks, match)
	})
}

// stripMarkup removes block-level elements: tags from the reserved set, or
// any tag whose name contains a hyphen or underscore (custom extension
// tags). The matching close tag of the same name is located by tracking
// open/close depth, so nested same-named tags match correctly.
func stripMarkup(text string, blocks *[]Block) string {
	var out strings.Builder
	pos := 0

	for pos < len(text) {
		loc := openTagRe.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			out.WriteString(text[pos:])
			break
		}

		start := pos + loc[0]
		name := text[pos+loc[2] : pos+loc[3]]
		openEnd := pos + loc[1]

		if !protectedTagName(name) {
			out.WriteString(text[pos:openEnd])
			pos = openEnd
			continue
		}

		end, ok := findMatchingClose(text, openEnd, name)
		if !ok {
			// Unterminated element; leave it alone.
			out.WriteString(text[pos:openEnd])
			pos = openEnd
			continue
		}

		out.WriteString(text[pos:start])
		out.WriteString(record(blocks, text[start:end]))
		pos = end
	}

	return out.String()
}

// protectedTagName reports whether a tag name belongs to the reserved set or
// marks a custom extension element.
func protectedTagName(name string) bool {
	if _, ok := reservedTags[strings.ToLower(name)]; ok {
		return true
	}
	return strings.ContainsAny(name, "-_")
}

// findMatchingClose scans forward from offset for the close tag matching an
// already-consumed open tag of the given name, tracking nesting depth of
// same-named tags. Returns the offset just past the close tag.
func findMatchingClose(text string, offset int, name string) (int, bool) {
	depth := 1
	lower := strings.ToLower(name)
	closeRe := regexp.MustCompile(`(?i)</?` + regexp.QuoteMeta(name) + `(?:\s[^<>]*)?>`)

	pos := offset
	for pos < len(text) {
		loc := closeRe.FindStringIndex(text[pos:])
		if loc == nil {
			return 0, false
		}
		tag := text[pos+loc[0] : pos+loc[1]]
		if strings.HasPrefix(tag, "</") {
			depth--
			if depth == 0 {
				return pos + loc[1], true
			}
		} else if !strings.HasSuffix(tag, "/>") {
			// A nested open of the same name (self-closing tags do not nest).
			if strings.EqualFold(tagName(tag), lower) {
				depth++
			}
		}
		pos += loc[1]
	}
	return 0, false
}

// tagName extracts the element name from a raw open tag.
func tagName(tag string) string {
	inner := strings.TrimPrefix(tag, "<")
	inner = strings.TrimSuffix(inner, ">")
	inner = strings.TrimSuffix(inner, "/")
	if i := strings.IndexFunc(inner, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }); i >= 0 {
		inner = inner[:i]
	}
	return strings.ToLower(inner)
}

// stripBracketTags removes [TAG]...[/TAG] blocks, non-greedy, skipping the
// reply-protocol tags and the protector's own placeholder tags.
func stripBracketTags(text string, blocks *[]Block) string {
	var out strings.Builder
	pos := 0

	for pos < len(text) {
		loc := bracketOpenRe.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			out.WriteString(text[pos:])
			break
		}

		start := pos + loc[0]
		openEnd := pos + loc[1]
		name := text[pos+loc[2] : pos+loc[3]]

		if _, reserved := protocolTags[name]; reserved || strings.HasPrefix(name, "PROTECTED") {
			out.WriteString(text[pos:openEnd])
			pos = openEnd
			continue
		}

		closeTag := "[/" + name + "]"
		rel := strings.Index(text[openEnd:], closeTag)
		if rel < 0 {
			out.WriteString(text[pos:openEnd])
			pos = openEnd
			continue
		}

		end := openEnd + rel + len(closeTag)
		out.WriteString(text[pos:start])
		out.WriteString(record(blocks, text[start:end]))
		pos = end
	}

	return out.String()
}

func record(blocks *[]Block, raw string) string {
	index := len(*blocks)
	*blocks = append(*blocks, Block{Index: index, Raw: raw})
	return placeholder(index)
}

// Restore substitutes every placeholder token in text with its stored block
// verbatim. Blocks whose placeholder no longer appears (the rewriting engine
// dropped it) are appended to the end of the result: protected content is
// never silently lost, even if it ends up out of place.
func Restore(text string, blocks []Block) string {
	result := text
	orphaned := make([]bool, len(blocks))

	// Highest index first: a later pass's block may itself contain an
	// earlier pass's placeholder, which only becomes visible once the
	// containing block is back in place.
	for i := len(blocks) - 1; i >= 0; i-- {
		token := placeholder(blocks[i].Index)
		if strings.Contains(result, token) {
			result = strings.ReplaceAll(result, token, blocks[i].Raw)
		} else {
			orphaned[i] = true
		}
	}

	var orphans []Block
	for i, block := range blocks {
		if orphaned[i] {
			orphans = append(orphans, block)
		}
	}

	for _, block := range orphans {
		if result != "" {
			result += "\n\n"
		}
		result += block.Raw
	}
	return result
}

// HasPlaceholders reports whether text still carries placeholder tokens.
func HasPlaceholders(text string) bool {
	return placeholderRe.MatchString(text)
}
