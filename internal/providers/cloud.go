package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// CloudConfig holds configuration for an OpenAI-compatible cloud provider.
// Gemini and Groq both expose chat-completions-compatible endpoints, so a
// single client serves every cloud backend; only the base URL and key vary.
type CloudConfig struct {
	Name         string // provider id, e.g. "gemini"
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	HTTPClient   *http.Client // optional (tests)
}

// CloudProvider implements Provider over any OpenAI-compatible
// chat-completions API using the official OpenAI SDK.
type CloudProvider struct {
	name         string
	apiKey       string
	defaultModel string
	maxRetries   int
	retryDelay   time.Duration
	client       openai.Client
}

// NewCloudProvider creates a cloud provider client. A missing API key is
// not an error here; calls fail fast with a ConfigError instead, so a
// half-configured provider can still be listed.
func NewCloudProvider(cfg CloudConfig) *CloudProvider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		// SDK-level retries are disabled; retry policy lives in Generate.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &CloudProvider{
		name:         cfg.Name,
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		client:       openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (p *CloudProvider) Name() string { return p.name }

// Generate performs a single-shot chat completion. Transient failures
// (network errors, 429, 5xx) are retried with backoff.
func (p *CloudProvider) Generate(ctx context.Context, req *Request) (string, error) {
	if p.apiKey == "" {
		return "", &ConfigError{Provider: p.name, Missing: "API key"}
	}

	params := p.buildParams(req)

	var content string
	err := retry.Do(
		func() error {
			resp, err := p.client.Chat.Completions.New(ctx, params)
			if err != nil {
				return p.classify(err)
			}
			if len(resp.Choices) == 0 {
				return &UpstreamError{Provider: p.name, Status: http.StatusOK, Body: "no choices in response"}
			}
			content = resp.Choices[0].Message.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.maxRetries)),
		retry.Delay(p.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
	if err != nil {
		return "", err
	}
	return content, nil
}

// Stream performs a streaming chat completion, forwarding each delta as a
// fragment. Streaming calls are not retried; a mid-stream failure would
// duplicate already-delivered fragments.
func (p *CloudProvider) Stream(ctx context.Context, req *Request, onFragment FragmentFunc) error {
	if p.apiKey == "" {
		return &ConfigError{Provider: p.name, Missing: "API key"}
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, p.buildParams(req))
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := onFragment(delta); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return p.classify(err)
	}
	return nil
}

// buildParams converts a Request into SDK chat parameters. The system
// instruction becomes a system message, never part of the user prompt; an
// attached image rides along as an inline data-URI content part.
func (p *CloudProvider) buildParams(req *Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(req.SystemInstruction))
	}

	if req.Image != nil {
		parts := []openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(req.Prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: fmt.Sprintf("data:%s;base64,%s", req.Image.MimeType, req.Image.Base64),
			}),
		}
		messages = append(messages, openai.UserMessage(parts))
	} else {
		messages = append(messages, openai.UserMessage(req.Prompt))
	}

	return openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
}

// classify maps SDK errors onto the provider error taxonomy.
func (p *CloudProvider) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{Provider: p.name, Status: apiErr.StatusCode, Body: apiErr.Message}
	}
	return &NetworkError{Provider: p.name, Err: err}
}

// isTransient reports whether an error is worth retrying: transport
// failures, rate limits, and server-side errors.
func isTransient(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Status == http.StatusTooManyRequests || upErr.Status >= 500
	}
	return false
}

// Verify interface
var _ Provider = (*CloudProvider)(nil)
