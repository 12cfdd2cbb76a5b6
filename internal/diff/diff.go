// Package diff computes word-level edit scripts between an original text and
// its rewritten form, for human review of automated edits.
package diff

import (
	"strings"
	"unicode"
)

// Kind classifies a diff segment.
type Kind int

const (
	Equal  Kind = iota // Present in both texts
	Delete             // Present only in the original
	Insert             // Present only in the rewritten text
)

// String returns a short label for the segment kind.
func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	default:
		return "unknown"
	}
}

// Segment is one run of the edit script. Adjacent segments always differ in
// kind; same-kind runs are merged during computation.
type Segment struct {
	Kind Kind
	Text string
}

// Tokenize splits text into maximal runs of non-whitespace and whitespace,
// alternating, preserving every character. Concatenating the result
// reproduces the input exactly.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var tokens []string
	var b strings.Builder
	inSpace := false

	for i, r := range text {
		space := unicode.IsSpace(r)
		if i > 0 && space != inSpace {
			tokens = append(tokens, b.String())
			b.Reset()
		}
		b.WriteRune(r)
		inSpace = space
	}
	tokens = append(tokens, b.String())
	return tokens
}

// Compute produces the edit script transforming original into refined.
// Cost is O(n*m) in token counts; callers bound input size for interactive
// use. Identical inputs short-circuit without building the table.
func Compute(original, refined string) []Segment {
	if original == refined {
		if original == "" {
			return nil
		}
		return []Segment{{Kind: Equal, Text: original}}
	}

	a := Tokenize(original)
	b := Tokenize(refined)

	// LCS length table; table[i][j] covers a[:i] vs b[:j].
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}

	// Backtrace from the final cell. On a tie, insertion wins over deletion;
	// this ordering is user-visible in the rendered diff and is kept as-is.
	rev := make([]Segment, 0, len(a)+len(b))
	i, j := len(a), len(b)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			rev = append(rev, Segment{Kind: Equal, Text: a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || table[i][j-1] >= table[i-1][j]):
			rev = append(rev, Segment{Kind: Insert, Text: b[j-1]})
			j--
		default:
			rev = append(rev, Segment{Kind: Delete, Text: a[i-1]})
			i--
		}
	}

	// Replay forward, merging adjacent segments of the same kind.
	segments := make([]Segment, 0, len(rev))
	for k := len(rev) - 1; k >= 0; k-- {
		seg := rev[k]
		if n := len(segments); n > 0 && segments[n-1].Kind == seg.Kind {
			segments[n-1].Text += seg.Text
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

// HasChanges reports whether the script contains any non-equal segment.
func HasChanges(segments []Segment) bool {
	for _, s := range segments {
		if s.Kind != Equal {
			return true
		}
	}
	return false
}
