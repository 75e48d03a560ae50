package providers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestSimulated() *SimulatedProvider {
	return NewSimulatedProvider(SimulatedConfig{
		Name:          "huggingface",
		Latency:       time.Millisecond,
		FragmentDelay: time.Microsecond,
	})
}

func TestSimulatedGenerate(t *testing.T) {
	p := newTestSimulated()
	ctx := context.Background()

	t.Run("prompt only", func(t *testing.T) {
		out, err := p.Generate(ctx, &Request{Model: "sim-1", Prompt: "hello world"})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if !strings.HasPrefix(out, "This is a simulated response from huggingface using the model sim-1.") {
			t.Errorf("unexpected header: %q", out)
		}
		if !strings.Contains(out, "---PROMPT RECEIVED---\nhello world") {
			t.Errorf("prompt echo missing: %q", out)
		}
		if strings.Contains(out, "---IMAGE ATTACHED---") {
			t.Error("image section present without image")
		}
		if strings.Contains(out, "---SYSTEM INSTRUCTION RECEIVED---") {
			t.Error("system section present without system instruction")
		}
	})

	t.Run("with system instruction and image", func(t *testing.T) {
		out, err := p.Generate(ctx, &Request{
			Model:             "sim-1",
			Prompt:            "describe this",
			SystemInstruction: "You are a pirate.",
			Image:             &ImageData{Base64: "aGk=", MimeType: "image/png"},
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if !strings.Contains(out, "---IMAGE ATTACHED---") {
			t.Error("image section missing")
		}
		if !strings.Contains(out, "---SYSTEM INSTRUCTION RECEIVED---\nYou are a pirate.") {
			t.Error("system instruction echo missing")
		}
	})
}

func TestSimulatedStream(t *testing.T) {
	p := newTestSimulated()
	ctx := context.Background()
	req := &Request{Model: "sim-1", Prompt: "one two three"}

	t.Run("fragments reassemble to full response", func(t *testing.T) {
		var sb strings.Builder
		var count int
		err := p.Stream(ctx, req, func(fragment string) error {
			count++
			sb.WriteString(fragment)
			return nil
		})
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		want, _ := p.Generate(ctx, req)
		if sb.String() != want {
			t.Errorf("stream output %q != generate output %q", sb.String(), want)
		}
		if count < 2 {
			t.Errorf("expected multiple fragments, got %d", count)
		}
	})

	t.Run("fragment error stops stream", func(t *testing.T) {
		wantErr := errors.New("stop")
		err := p.Stream(ctx, req, func(string) error { return wantErr })
		if !errors.Is(err, wantErr) {
			t.Errorf("Stream() error = %v, want %v", err, wantErr)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.Stream(ctx, req, func(string) error {
			t.Error("fragment delivered after cancellation")
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Stream() error = %v, want context.Canceled", err)
		}
	})
}
