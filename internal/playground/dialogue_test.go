package playground

import (
	"strings"
	"testing"
)

func TestDialogueStates(t *testing.T) {
	t.Run("no placeholders is idle", func(t *testing.T) {
		d := NewDialogue("Hello world")
		if d.State() != StateIdle {
			t.Errorf("State() = %v, want StateIdle", d.State())
		}
		if d.Collecting() {
			t.Error("Collecting() = true for template without placeholders")
		}
	})

	t.Run("placeholders start collecting", func(t *testing.T) {
		d := NewDialogue("Hello {{name}}!")
		if d.State() != StateCollecting {
			t.Errorf("State() = %v, want StateCollecting", d.State())
		}
		if d.CurrentVariable() != "name" {
			t.Errorf("CurrentVariable() = %q, want %q", d.CurrentVariable(), "name")
		}
	})
}

func TestDialogueQuestions(t *testing.T) {
	d := NewDialogue("x={{a}} y={{b}}")

	first := d.FirstQuestion()
	if first.Role != RoleAI {
		t.Errorf("first question role = %q, want ai", first.Role)
	}
	if want := `This prompt needs some information. First, what is the value for "a"?`; first.Content != want {
		t.Errorf("first question = %q, want %q", first.Content, want)
	}

	next, resolved := d.Submit("1")
	if resolved {
		t.Fatal("resolved after first of two variables")
	}
	if next.Role != RoleAI {
		t.Errorf("next question role = %q, want ai", next.Role)
	}
	if want := `Great. Now, what's the value for "b"?`; next.Content != want {
		t.Errorf("next question = %q, want %q", next.Content, want)
	}

	final, resolved := d.Submit("2")
	if !resolved {
		t.Fatal("not resolved after last variable")
	}
	if final.Role != RoleSystem {
		t.Errorf("resolution entry role = %q, want system", final.Role)
	}
	if !strings.Contains(final.Content, "All variables filled!") {
		t.Errorf("resolution entry = %q, want summary header", final.Content)
	}
	if !strings.Contains(final.Content, "x=1 y=2") {
		t.Errorf("resolution entry = %q, should show resolved prompt", final.Content)
	}
}

func TestDialogueResolution(t *testing.T) {
	t.Run("global substitution", func(t *testing.T) {
		d := NewDialogue("x={{a}} y={{b}} z={{a}}")
		d.Submit("1")
		_, resolved := d.Submit("2")
		if !resolved {
			t.Fatal("expected resolution")
		}
		if got, want := d.Resolved(), "x=1 y=2 z=1"; got != want {
			t.Errorf("Resolved() = %q, want %q", got, want)
		}
	})

	t.Run("empty value accepted", func(t *testing.T) {
		d := NewDialogue("Hello {{name}}!")
		_, resolved := d.Submit("")
		if !resolved {
			t.Fatal("empty value should still resolve")
		}
		if got, want := d.Resolved(), "Hello !"; got != want {
			t.Errorf("Resolved() = %q, want %q", got, want)
		}
	})

	t.Run("submit after resolved is a no-op", func(t *testing.T) {
		d := NewDialogue("{{a}}")
		d.Submit("v")
		entry, resolved := d.Submit("again")
		if resolved || entry.Content != "" {
			t.Error("Submit after resolution should do nothing")
		}
		if d.Resolved() != "v" {
			t.Errorf("Resolved() = %q, want %q", d.Resolved(), "v")
		}
	})
}
