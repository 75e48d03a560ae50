// Package providers abstracts LLM backends behind a uniform generation
// interface. Each provider family (cloud OpenAI-compatible, local Ollama,
// simulated) implements Provider; the Registry instantiates them from
// configuration and hands them out by provider id.
package providers

import "context"

// ImageData is an inline image forwarded to multimodal providers.
type ImageData struct {
	// Base64 holds the raw image bytes, base64 encoded, without a data: prefix.
	Base64 string
	// MimeType is the image MIME type, e.g. "image/png".
	MimeType string
}

// Request describes one generation call. SystemInstruction is routed
// out-of-band from the prompt body by providers that support it; providers
// that cannot must surface it distinctly rather than concatenating it into
// the prompt.
type Request struct {
	Model             string
	Prompt            string
	SystemInstruction string
	Image             *ImageData
}

// FragmentFunc receives one streamed text fragment. Returning an error
// stops the stream; the provider returns that error from Stream.
type FragmentFunc func(fragment string) error

// Provider is the uniform interface over a single LLM backend.
type Provider interface {
	// Name returns the provider identifier (e.g. "gemini", "ollama").
	Name() string

	// Generate performs a single-shot call and returns the complete
	// response text.
	Generate(ctx context.Context, req *Request) (string, error)

	// Stream performs a streaming call, invoking onFragment for each text
	// fragment in arrival order. Cancelling ctx halts the stream and
	// returns ctx.Err(); no fragments are delivered after cancellation.
	Stream(ctx context.Context, req *Request, onFragment FragmentFunc) error
}

// ModelLister is implemented by providers that can enumerate the models
// available on their backend (currently the local Ollama provider).
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}
