package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SimulatedConfig holds configuration for the simulated provider.
type SimulatedConfig struct {
	Name string
	// Latency before the response starts. Defaults to 800ms; tests set it
	// to something small.
	Latency time.Duration
	// FragmentDelay is the pause between streamed fragments. Defaults to
	// 30ms.
	FragmentDelay time.Duration
}

// SimulatedProvider echoes the request back without any network activity.
// It lets the playground be exercised end to end with no credentials.
type SimulatedProvider struct {
	name          string
	latency       time.Duration
	fragmentDelay time.Duration
}

// NewSimulatedProvider creates a simulated provider.
func NewSimulatedProvider(cfg SimulatedConfig) *SimulatedProvider {
	if cfg.Latency == 0 {
		cfg.Latency = 800 * time.Millisecond
	}
	if cfg.FragmentDelay == 0 {
		cfg.FragmentDelay = 30 * time.Millisecond
	}
	return &SimulatedProvider{
		name:          cfg.Name,
		latency:       cfg.Latency,
		fragmentDelay: cfg.FragmentDelay,
	}
}

// Name returns the provider identifier.
func (p *SimulatedProvider) Name() string { return p.name }

// Generate returns the echo response after the configured latency.
func (p *SimulatedProvider) Generate(ctx context.Context, req *Request) (string, error) {
	if err := sleepCtx(ctx, p.latency); err != nil {
		return "", err
	}
	return p.compose(req), nil
}

// Stream delivers the echo response word by word with a short pause
// between fragments, approximating a real token stream.
func (p *SimulatedProvider) Stream(ctx context.Context, req *Request, onFragment FragmentFunc) error {
	if err := sleepCtx(ctx, p.latency); err != nil {
		return err
	}

	words := strings.SplitAfter(p.compose(req), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		if err := onFragment(w); err != nil {
			return err
		}
		if i < len(words)-1 {
			if err := sleepCtx(ctx, p.fragmentDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// compose builds the echo response: a header line, then sections for each
// part of the request that was received.
func (p *SimulatedProvider) compose(req *Request) string {
	model := req.Model
	if model == "" {
		model = "default"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "This is a simulated response from %s using the model %s.\n\n", p.name, model)

	if req.Image != nil {
		sb.WriteString("---IMAGE ATTACHED---\nAn image was received but cannot be displayed in this simulation.\n\n")
	}
	if req.SystemInstruction != "" {
		fmt.Fprintf(&sb, "---SYSTEM INSTRUCTION RECEIVED---\n%s\n\n", req.SystemInstruction)
	}
	fmt.Fprintf(&sb, "---PROMPT RECEIVED---\n%s\n\n", req.Prompt)

	return sb.String()
}

// sleepCtx sleeps for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Verify interface
var _ Provider = (*SimulatedProvider)(nil)
