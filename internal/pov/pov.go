// Package pov classifies the grammatical point of view of a text by pronoun
// frequency. It is a shallow heuristic: no parsing, just word-boundary
// counting of three pronoun classes.
package pov

import "regexp"

// Class is a detected grammatical point of view.
type Class string

const (
	First          Class = "first"
	FirstAndSecond Class = "first_and_second"
	Second         Class = "second"
	Third          Class = "third"
	Undetermined   Class = "undetermined"
)

var (
	firstRe  = regexp.MustCompile(`(?i)\b(i|me|my|myself|mine)\b`)
	secondRe = regexp.MustCompile(`(?i)\b(you|your|yours|yourself)\b`)
	thirdRe  = regexp.MustCompile(`(?i)\b(he|she|they|him|her|them|his|hers|their|theirs)\b`)
)

// Detector holds the classification thresholds. Both are heuristic
// constants, not domain laws, so they are exposed as tunables.
type Detector struct {
	// MinPronouns is the minimum combined pronoun count required before a
	// classification is attempted at all.
	MinPronouns int

	// MixedShare is the fraction of the combined count that first- and
	// second-person counts must each exceed for the mixed classification.
	MixedShare float64
}

// New returns a detector with the default thresholds: at least two pronouns
// of evidence, and a 20% share for the mixed-voice call.
func New() Detector {
	return Detector{MinPronouns: 2, MixedShare: 0.20}
}

// Detect classifies text. Below MinPronouns total evidence it returns
// Undetermined. If first- and second-person counts each exceed MixedShare of
// the total, the text addresses both voices; otherwise the class with a
// strict plurality wins, and a tie is Undetermined.
func (d Detector) Detect(text string) Class {
	first := len(firstRe.FindAllString(text, -1))
	second := len(secondRe.FindAllString(text, -1))
	third := len(thirdRe.FindAllString(text, -1))

	total := first + second + third
	if total < d.MinPronouns {
		return Undetermined
	}

	threshold := d.MixedShare * float64(total)
	if float64(first) > threshold && float64(second) > threshold {
		return FirstAndSecond
	}

	switch {
	case first > second && first > third:
		return First
	case second > first && second > third:
		return Second
	case third > first && third > second:
		return Third
	default:
		return Undetermined
	}
}
