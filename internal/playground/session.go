package playground

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/promptdeck/promptdeck/internal/providers"
	"github.com/promptdeck/promptdeck/internal/types"
)

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser   Role = "user"
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
)

// Entry is one transcript message. The trailing ai entry is mutated in
// place while a response streams; every other entry is immutable once
// appended.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

var (
	// ErrNoItem is returned from Run when no content item is selected.
	ErrNoItem = errors.New("no item selected")

	// ErrBusy is returned from Run while a generation is in flight. At
	// most one generation runs per session.
	ErrBusy = errors.New("generation already in flight")
)

// SessionConfig configures a playground session.
type SessionConfig struct {
	ID          string
	Registry    *providers.Registry
	Logger      *slog.Logger
	Provider    string
	Model       string
	Transcriber Transcriber
}

// Session is the playground session controller. It owns the transcript,
// routes user submissions either to the variable-collection dialogue or to
// a provider stream, and guarantees at most one in-flight generation.
type Session struct {
	id          string
	registry    *providers.Registry
	logger      *slog.Logger
	transcriber Transcriber

	mu             sync.Mutex
	item           *types.ContentItem
	contextDoc     *types.ContextDocument
	image          *providers.ImageData
	provider       string
	model          string
	transcript     []Entry
	loading        bool
	dialogue       *Dialogue
	resolvedPrompt string
	pendingInput   string
	generation     int
	cancel         context.CancelFunc
}

// NewSession creates a session with no item selected.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:          cfg.ID,
		registry:    cfg.Registry,
		logger:      logger,
		transcriber: cfg.Transcriber,
		provider:    cfg.Provider,
		model:       cfg.Model,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SelectItem switches the session to a new content item. Any in-flight
// generation is cancelled before state is reset, so a stale stream can
// never append to the new transcript. Re-selecting the same item resets to
// the same initial state as a first-time selection.
func (s *Session) SelectItem(item *types.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.transcript = nil
	s.dialogue = nil
	s.resolvedPrompt = ""
	s.image = nil
	s.contextDoc = nil
	s.pendingInput = ""
	s.loading = false
	s.item = item

	if item == nil {
		return
	}

	if item.Kind == types.KindPrompt {
		d := NewDialogue(item.Template)
		if d.Collecting() {
			s.dialogue = d
			s.transcript = []Entry{d.FirstQuestion()}
			return
		}
	}

	itemType := "Prompt"
	contentText := fmt.Sprintf("\n\nTemplate:\n---\n%s", item.Template)
	if item.IsSystemItem() {
		itemType = "Agent/Persona"
		contentText = fmt.Sprintf("\n\nSystem Instruction:\n---\n%s", item.SystemInstruction)
	}
	s.transcript = []Entry{{
		Role:    RoleSystem,
		Content: fmt.Sprintf("Testing %s: %q%s", itemType, item.Title, contentText),
	}}
}

// SelectContext sets or clears (nil) the reference context document.
func (s *Session) SelectContext(doc *types.ContextDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contextDoc = doc
}

// AttachImage sets the session image forwarded to multimodal providers on
// the next run. Cleared automatically after a run completes.
func (s *Session) AttachImage(img *providers.ImageData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = img
}

// ClearImage removes the attached session image.
func (s *Session) ClearImage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = nil
}

// SetProvider changes the active provider/model selection.
func (s *Session) SetProvider(provider, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = provider
	s.model = model
}

// Provider returns the active provider and model.
func (s *Session) Provider() (provider, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider, s.model
}

// Item returns the selected content item, or nil.
func (s *Session) Item() *types.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item
}

// Transcript returns a copy of the transcript.
func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Loading reports whether a generation is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Collecting reports whether the variable-collection dialogue is active.
func (s *Session) Collecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogue != nil && s.dialogue.Collecting()
}

// Close cancels any in-flight generation and detaches the session state.
func (s *Session) Close() {
	s.SelectItem(nil)
}

// Run is the session's run action. While the dialogue is collecting, the
// input is recorded as the current variable's value and no provider is
// contacted. Otherwise the input is composed into an outbound request and
// streamed; each fragment is appended to the trailing ai entry and, when
// onFragment is non-nil, forwarded to it. Provider failures are written
// into the trailing ai entry as an "Error:" message rather than returned;
// only ErrNoItem, ErrBusy, and context errors from the caller's own ctx
// reach the caller.
func (s *Session) Run(ctx context.Context, input string, onFragment func(fragment string)) error {
	s.mu.Lock()
	if s.item == nil {
		s.mu.Unlock()
		return ErrNoItem
	}
	if s.loading {
		s.mu.Unlock()
		return ErrBusy
	}

	if s.pendingInput != "" {
		if input == "" {
			input = s.pendingInput
		} else {
			input = s.pendingInput + " " + input
		}
		s.pendingInput = ""
	}
	input = strings.TrimSpace(input)

	if s.dialogue != nil && s.dialogue.Collecting() {
		s.transcript = append(s.transcript, Entry{Role: RoleUser, Content: input})
		reply, resolved := s.dialogue.Submit(input)
		s.transcript = append(s.transcript, reply)
		if resolved {
			s.resolvedPrompt = s.dialogue.Resolved()
		}
		s.mu.Unlock()
		return nil
	}

	s.loading = true
	if input != "" {
		s.transcript = append(s.transcript, Entry{Role: RoleUser, Content: input})
	}
	s.transcript = append(s.transcript, Entry{Role: RoleAI, Content: ""})

	item := s.item
	var base string
	if item.IsSystemItem() {
		base = input
	} else {
		baseText := s.resolvedPrompt
		if baseText == "" {
			baseText = item.Template
		}
		base = baseText
		if input != "" {
			base = baseText + "\n\n" + input
		}
	}
	prompt, systemInstruction := Compose(ComposeInput{Base: base, Item: item, Context: s.contextDoc})

	req := &providers.Request{
		Model:             s.model,
		Prompt:            prompt,
		SystemInstruction: systemInstruction,
		Image:             s.image,
	}
	providerName := s.provider

	s.generation++
	gen := s.generation
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	err := s.generate(runCtx, providerName, req, gen, onFragment)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// The session was reset for a different item mid-stream;
		// SelectItem already cleaned up and nothing here may be touched.
		return nil
	}
	s.loading = false
	s.image = nil
	s.resolvedPrompt = ""
	s.cancel = nil

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("generation failed", "session", s.id, "provider", providerName, "error", err)
		s.setTrailingAI("Error: " + err.Error())
	}
	return nil
}

// generate resolves the provider and consumes its stream, appending each
// fragment to the trailing ai entry. The generation counter guards against
// a stale stream touching a transcript that has since been reset.
func (s *Session) generate(ctx context.Context, providerName string, req *providers.Request, gen int, onFragment func(string)) error {
	p, err := s.registry.Get(providerName)
	if err != nil {
		return err
	}
	return p.Stream(ctx, req, func(fragment string) error {
		s.mu.Lock()
		if gen != s.generation {
			s.mu.Unlock()
			return context.Canceled
		}
		s.appendToTrailingAI(fragment)
		s.mu.Unlock()
		if onFragment != nil {
			onFragment(fragment)
		}
		return nil
	})
}

// appendToTrailingAI appends text to the last entry when it is an ai
// entry. Callers hold s.mu.
func (s *Session) appendToTrailingAI(text string) {
	if n := len(s.transcript); n > 0 && s.transcript[n-1].Role == RoleAI {
		s.transcript[n-1].Content += text
	}
}

// setTrailingAI replaces the last ai entry's content. Callers hold s.mu.
func (s *Session) setTrailingAI(text string) {
	if n := len(s.transcript); n > 0 && s.transcript[n-1].Role == RoleAI {
		s.transcript[n-1].Content = text
	}
}
