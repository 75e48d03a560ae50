package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig holds configuration for a local Ollama daemon.
type OllamaConfig struct {
	Name         string
	BaseURL      string // e.g. "http://localhost:11434"
	DefaultModel string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// OllamaProvider talks to a local Ollama daemon over its native HTTP API.
// Responses stream as newline-delimited JSON objects.
type OllamaProvider struct {
	name         string
	baseURL      string
	defaultModel string
	httpClient   *http.Client
}

// NewOllamaProvider creates an Ollama provider. The base URL may be empty;
// calls then fail with a ConfigError.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	if cfg.Timeout == 0 {
		// Local models can be slow to load on first call.
		cfg.Timeout = 5 * time.Minute
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OllamaProvider{
		name:         cfg.Name,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		defaultModel: cfg.DefaultModel,
		httpClient:   httpClient,
	}
}

// Name returns the provider identifier.
func (p *OllamaProvider) Name() string { return p.name }

// generateRequest is the /api/generate request body.
type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	System string   `json:"system,omitempty"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

// generateChunk is one line of the NDJSON /api/generate response.
type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// tagsResponse is the /api/tags response body.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate performs a single-shot call by collecting the full stream.
func (p *OllamaProvider) Generate(ctx context.Context, req *Request) (string, error) {
	var sb strings.Builder
	err := p.Stream(ctx, req, func(fragment string) error {
		sb.WriteString(fragment)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Stream posts to /api/generate and forwards each response fragment as it
// arrives. Malformed NDJSON lines are skipped rather than aborting the
// stream.
func (p *OllamaProvider) Stream(ctx context.Context, req *Request, onFragment FragmentFunc) error {
	if p.baseURL == "" {
		return &ConfigError{Provider: p.name, Missing: "base URL"}
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	body := generateRequest{
		Model:  model,
		Prompt: req.Prompt,
		System: req.SystemInstruction,
		Stream: true,
	}
	if req.Image != nil {
		body.Images = []string{req.Image.Base64}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &NetworkError{Provider: p.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UpstreamError{Provider: p.name, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Error != "" {
			return &UpstreamError{Provider: p.name, Status: resp.StatusCode, Body: chunk.Error}
		}
		if chunk.Response != "" {
			if err := onFragment(chunk.Response); err != nil {
				return err
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &NetworkError{Provider: p.name, Err: err}
	}
	return nil
}

// ListModels queries /api/tags for the models pulled on the daemon.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	if p.baseURL == "" {
		return nil, &ConfigError{Provider: p.name, Missing: "base URL"}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Provider: p.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{Provider: p.name, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Verify interfaces
var (
	_ Provider    = (*OllamaProvider)(nil)
	_ ModelLister = (*OllamaProvider)(nil)
)
