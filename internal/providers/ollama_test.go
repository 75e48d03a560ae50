package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaStream(t *testing.T) {
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"response":"Hello","done":false}` + "\n"))
		w.Write([]byte("not json at all\n"))
		w.Write([]byte(`{"response":" world","done":false}` + "\n"))
		w.Write([]byte(`{"response":"","done":true}` + "\n"))
	}))
	defer srv.Close()

	p := NewOllamaProvider(OllamaConfig{Name: "ollama", BaseURL: srv.URL, DefaultModel: "llama3"})

	var fragments []string
	err := p.Stream(context.Background(), &Request{
		Prompt:            "hi",
		SystemInstruction: "be brief",
	}, func(f string) error {
		fragments = append(fragments, f)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	if got := strings.Join(fragments, ""); got != "Hello world" {
		t.Errorf("streamed text = %q, want %q", got, "Hello world")
	}
	if gotBody.Model != "llama3" {
		t.Errorf("request model = %q, want default %q", gotBody.Model, "llama3")
	}
	if gotBody.System != "be brief" {
		t.Errorf("request system = %q, want %q", gotBody.System, "be brief")
	}
	if !gotBody.Stream {
		t.Error("request should ask for streaming")
	}
}

func TestOllamaGenerateCollectsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"a","done":false}` + "\n"))
		w.Write([]byte(`{"response":"b","done":false}` + "\n"))
		w.Write([]byte(`{"response":"c","done":true}` + "\n"))
	}))
	defer srv.Close()

	p := NewOllamaProvider(OllamaConfig{Name: "ollama", BaseURL: srv.URL})
	out, err := p.Generate(context.Background(), &Request{Model: "llama3", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "abc" {
		t.Errorf("Generate() = %q, want %q", out, "abc")
	}
}

func TestOllamaErrors(t *testing.T) {
	t.Run("missing base URL", func(t *testing.T) {
		p := NewOllamaProvider(OllamaConfig{Name: "ollama"})
		_, err := p.Generate(context.Background(), &Request{Prompt: "hi"})
		if !errors.Is(err, ErrMissingCredential) {
			t.Errorf("error = %v, want ErrMissingCredential", err)
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()

		p := NewOllamaProvider(OllamaConfig{Name: "ollama", BaseURL: srv.URL})
		_, err := p.Generate(context.Background(), &Request{Prompt: "hi"})
		var upErr *UpstreamError
		if !errors.As(err, &upErr) {
			t.Fatalf("error = %v, want UpstreamError", err)
		}
		if upErr.Status != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", upErr.Status)
		}
	})

	t.Run("error chunk mid-stream", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response":"partial","done":false}` + "\n"))
			w.Write([]byte(`{"error":"out of memory"}` + "\n"))
		}))
		defer srv.Close()

		p := NewOllamaProvider(OllamaConfig{Name: "ollama", BaseURL: srv.URL})
		err := p.Stream(context.Background(), &Request{Prompt: "hi"}, func(string) error { return nil })
		var upErr *UpstreamError
		if !errors.As(err, &upErr) {
			t.Fatalf("error = %v, want UpstreamError", err)
		}
		if !strings.Contains(upErr.Body, "out of memory") {
			t.Errorf("Body = %q, want upstream message", upErr.Body)
		}
	})

	t.Run("unreachable daemon", func(t *testing.T) {
		p := NewOllamaProvider(OllamaConfig{Name: "ollama", BaseURL: "http://127.0.0.1:1"})
		_, err := p.Generate(context.Background(), &Request{Prompt: "hi"})
		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			t.Errorf("error = %v, want NetworkError", err)
		}
	})
}

func TestOllamaListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "llama3:latest"},
				{"name": "mistral:7b"},
			},
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(OllamaConfig{Name: "ollama", BaseURL: srv.URL})
	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	want := []string{"llama3:latest", "mistral:7b"}
	if len(models) != len(want) {
		t.Fatalf("ListModels() = %v, want %v", models, want)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("models[%d] = %q, want %q", i, models[i], want[i])
		}
	}
}
