package playground

import (
	"context"
	"errors"
	"testing"

	"github.com/promptdeck/promptdeck/internal/providers"
)

// fakeTranscriber records listening state and replays scripted text.
type fakeTranscriber struct {
	onText    func(string)
	listening bool
}

func (f *fakeTranscriber) StartListening(onText func(text string)) error {
	f.onText = onText
	f.listening = true
	return nil
}

func (f *fakeTranscriber) StopListening() error {
	f.listening = false
	return nil
}

func TestSessionDictation(t *testing.T) {
	mock := &providers.MockProvider{Response: "ok"}
	tr := &fakeTranscriber{}
	s := NewSession(SessionConfig{
		ID:          "s1",
		Registry:    NewRegistryWith(mock),
		Provider:    "test",
		Model:       "m",
		Transcriber: tr,
	})
	s.SelectItem(agentItem("Terse", "Be terse."))

	if err := s.StartDictation(); err != nil {
		t.Fatalf("StartDictation() error = %v", err)
	}
	tr.onText("hello")
	tr.onText("there")
	if err := s.StopDictation(); err != nil {
		t.Fatalf("StopDictation() error = %v", err)
	}
	if got := s.PendingInput(); got != "hello there" {
		t.Errorf("PendingInput() = %q, want %q", got, "hello there")
	}

	if err := s.Run(context.Background(), "friend", nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := mock.LastRequest().Prompt; got != "hello there friend" {
		t.Errorf("sent prompt = %q, want dictated text folded in", got)
	}
	if s.PendingInput() != "" {
		t.Error("pending input not consumed by run")
	}
}

func TestSessionDictationUnconfigured(t *testing.T) {
	s := newTestSession(&providers.MockProvider{})
	if err := s.StartDictation(); !errors.Is(err, ErrNoTranscriber) {
		t.Errorf("StartDictation() error = %v, want ErrNoTranscriber", err)
	}
	if err := s.StopDictation(); !errors.Is(err, ErrNoTranscriber) {
		t.Errorf("StopDictation() error = %v, want ErrNoTranscriber", err)
	}
}
