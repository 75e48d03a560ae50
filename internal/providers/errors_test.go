package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{Provider: "gemini", Missing: "API key"}

	if !errors.Is(err, ErrMissingCredential) {
		t.Error("ConfigError should unwrap to ErrMissingCredential")
	}
	if !strings.Contains(err.Error(), "add it in settings") {
		t.Errorf("Error() = %q, should point at settings", err.Error())
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network error", &NetworkError{Provider: "p", Err: errors.New("refused")}, true},
		{"rate limited", &UpstreamError{Provider: "p", Status: http.StatusTooManyRequests}, true},
		{"server error", &UpstreamError{Provider: "p", Status: http.StatusBadGateway}, true},
		{"client error", &UpstreamError{Provider: "p", Status: http.StatusBadRequest}, false},
		{"unauthorized", &UpstreamError{Provider: "p", Status: http.StatusUnauthorized}, false},
		{"config error", &ConfigError{Provider: "p", Missing: "API key"}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransient(tt.err); got != tt.want {
				t.Errorf("isTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCloudMissingKeyFailsFast(t *testing.T) {
	p := NewCloudProvider(CloudConfig{Name: "gemini"})

	ctx := context.Background()
	if _, err := p.Generate(ctx, &Request{Prompt: "hi"}); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("Generate() error = %v, want ErrMissingCredential", err)
	}
	if err := p.Stream(ctx, &Request{Prompt: "hi"}, func(string) error { return nil }); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("Stream() error = %v, want ErrMissingCredential", err)
	}
}
