package playground

import "errors"

// ErrNoTranscriber is returned when dictation is requested but no
// transcriber capability was configured for the session.
var ErrNoTranscriber = errors.New("no transcriber configured")

// Transcriber is the speech-to-text capability. Implementations deliver
// recognized text through the callback passed to StartListening; the
// engine treats that text as ordinary input for the next run.
type Transcriber interface {
	StartListening(onText func(text string)) error
	StopListening() error
}

// StartDictation begins speech capture. Recognized text accumulates as
// pending input and is prepended to the next Run submission.
func (s *Session) StartDictation() error {
	if s.transcriber == nil {
		return ErrNoTranscriber
	}
	return s.transcriber.StartListening(func(text string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pendingInput == "" {
			s.pendingInput = text
		} else {
			s.pendingInput += " " + text
		}
	})
}

// StopDictation stops speech capture.
func (s *Session) StopDictation() error {
	if s.transcriber == nil {
		return ErrNoTranscriber
	}
	return s.transcriber.StopListening()
}

// PendingInput returns dictated text waiting to be folded into the next
// run.
func (s *Session) PendingInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingInput
}
