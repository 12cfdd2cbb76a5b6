package reply

import "testing"

func TestParse_ClosedRefinedAndChangelog(t *testing.T) {
	raw := "blah blah [CHANGELOG]\n- x\n[/CHANGELOG][REFINED]Hello world.[/REFINED]"
	parsed := Parse(raw)

	if parsed.Changelog != "- x" {
		t.Errorf("changelog = %q, want %q", parsed.Changelog, "- x")
	}
	if parsed.Refined != "Hello world." {
		t.Errorf("refined = %q, want %q", parsed.Refined, "Hello world.")
	}
}

func TestParse_RefinedOnlyDiscardsSurroundings(t *testing.T) {
	raw := "Let me think about this...\n[REFINED]Clean output.[/REFINED]\nHope that helps!"
	parsed := Parse(raw)

	if parsed.Changelog != "" {
		t.Errorf("changelog = %q, want empty", parsed.Changelog)
	}
	if parsed.Refined != "Clean output." {
		t.Errorf("refined = %q", parsed.Refined)
	}
}

func TestParse_CaseInsensitiveTags(t *testing.T) {
	raw := "[changelog]- lowered[/ChangeLog][Refined]Mixed case works.[/refined]"
	parsed := Parse(raw)

	if parsed.Changelog != "- lowered" {
		t.Errorf("changelog = %q", parsed.Changelog)
	}
	if parsed.Refined != "Mixed case works." {
		t.Errorf("refined = %q", parsed.Refined)
	}
}

func TestParse_ClosedChangelogTextAfterTag(t *testing.T) {
	raw := "[CHANGELOG]\n- tightened wording\n[/CHANGELOG]\nThe final text follows here."
	parsed := Parse(raw)

	if parsed.Changelog != "- tightened wording" {
		t.Errorf("changelog = %q", parsed.Changelog)
	}
	if parsed.Refined != "The final text follows here." {
		t.Errorf("refined = %q", parsed.Refined)
	}
}

func TestParse_UnclosedChangelogBlankLineSplit(t *testing.T) {
	raw := "[CHANGELOG]- fixed typo\n\nHello there."
	parsed := Parse(raw)

	if parsed.Changelog != "- fixed typo" {
		t.Errorf("changelog = %q, want %q", parsed.Changelog, "- fixed typo")
	}
	if parsed.Refined != "Hello there." {
		t.Errorf("refined = %q, want %q", parsed.Refined, "Hello there.")
	}
}

func TestParse_UnclosedChangelogNoBlankLine(t *testing.T) {
	raw := "[CHANGELOG]- only notes, no body"
	parsed := Parse(raw)

	if parsed.Changelog != "" {
		t.Errorf("changelog = %q, want empty", parsed.Changelog)
	}
	if parsed.Refined != "- only notes, no body" {
		t.Errorf("refined = %q", parsed.Refined)
	}
}

func TestParse_FallbackWholeReply(t *testing.T) {
	raw := "  Just plain text, no tags at all.  "
	parsed := Parse(raw)

	if parsed.Changelog != "" {
		t.Errorf("changelog = %q, want empty", parsed.Changelog)
	}
	if parsed.Refined != "Just plain text, no tags at all." {
		t.Errorf("refined = %q", parsed.Refined)
	}
}

func TestParse_LeftoverMarkersStripped(t *testing.T) {
	raw := "[REFINED]Result with a stray [/CHANGELOG] marker inside.[/REFINED]"
	parsed := Parse(raw)

	if parsed.Refined != "Result with a stray  marker inside." {
		t.Errorf("refined = %q", parsed.Refined)
	}
}

func TestParse_EmptyRefinedPairFallsBack(t *testing.T) {
	raw := "some commentary [REFINED][/REFINED] trailing"
	parsed := Parse(raw)

	// The empty pair yields nothing usable, so the whole reply (minus the
	// protocol markers) is used verbatim.
	if parsed.Refined != "some commentary  trailing" {
		t.Errorf("refined = %q", parsed.Refined)
	}
}

func TestParse_BlankReply(t *testing.T) {
	parsed := Parse("   \n  ")
	if parsed.Refined != "" || parsed.Changelog != "" {
		t.Errorf("blank reply should parse to empty fields, got %+v", parsed)
	}
}

func TestParse_RefinedPriorityOverChangelogSplit(t *testing.T) {
	// Branch 1 wins even when branch 2 would also apply.
	raw := "[CHANGELOG]- c[/CHANGELOG] not this [REFINED]this[/REFINED]"
	parsed := Parse(raw)

	if parsed.Refined != "this" {
		t.Errorf("refined = %q", parsed.Refined)
	}
	if parsed.Changelog != "- c" {
		t.Errorf("changelog = %q", parsed.Changelog)
	}
}
