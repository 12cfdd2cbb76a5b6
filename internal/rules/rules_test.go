package rules

import (
	"strings"
	"testing"
)

func TestCompile_AllDisabledFallsBack(t *testing.T) {
	got := Compile(Set{})
	want := "1. Improve the overall quality of the writing."
	if got != want {
		t.Errorf("Compile(empty) = %q, want %q", got, want)
	}
	if strings.Count(got, "\n") != 0 {
		t.Error("fallback must be exactly one line")
	}
}

func TestCompile_DeclarationOrder(t *testing.T) {
	set := Set{Builtin: map[string]bool{
		"tense":   true,
		"grammar": true,
	}}
	got := Compile(set)
	want := "1. Correct grammar, spelling, and punctuation errors.\n2. Keep verb tense consistent throughout."
	if got != want {
		t.Errorf("Compile = %q, want %q", got, want)
	}
}

func TestCompile_CustomAfterBuiltins(t *testing.T) {
	set := Set{
		Builtin: map[string]bool{"grammar": true},
		Custom: []Custom{
			{Text: "Never use semicolons.", Enabled: true},
			{Text: "Prefer short sentences.", Enabled: true},
		},
	}
	got := Compile(set)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	if lines[1] != "2. Never use semicolons." || lines[2] != "3. Prefer short sentences." {
		t.Errorf("custom rule order wrong: %q", got)
	}
}

func TestCompile_SkipsDisabledAndBlankCustoms(t *testing.T) {
	set := Set{Custom: []Custom{
		{Text: "Enabled rule.", Enabled: true},
		{Text: "Disabled rule.", Enabled: false},
		{Text: "   ", Enabled: true},
		{Text: "", Enabled: true},
	}}
	got := Compile(set)
	if got != "1. Enabled rule." {
		t.Errorf("Compile = %q", got)
	}
}

func TestCompile_TrimsCustomText(t *testing.T) {
	set := Set{Custom: []Custom{{Text: "  padded  ", Enabled: true}}}
	if got := Compile(set); got != "1. padded" {
		t.Errorf("Compile = %q", got)
	}
}

func TestDefaultSet_EnablesAllBuiltins(t *testing.T) {
	got := Compile(DefaultSet())
	lines := strings.Split(got, "\n")
	if len(lines) != len(Builtins()) {
		t.Errorf("expected %d lines, got %d", len(Builtins()), len(lines))
	}
	if !strings.HasPrefix(lines[0], "1. ") {
		t.Errorf("numbering wrong: %q", lines[0])
	}
}

func TestValidKey(t *testing.T) {
	if !ValidKey("grammar") {
		t.Error("grammar should be a valid key")
	}
	if ValidKey("no-such-rule") {
		t.Error("unknown key accepted")
	}
}
