package assistant

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// EventKind classifies a speech-recognition event forwarded by the client.
type EventKind string

const (
	EventInterim EventKind = "interim"
	EventFinal   EventKind = "final"
	EventEnd     EventKind = "end"
	EventError   EventKind = "error"
)

// RecognitionEvent is one event from the client-side recognition stream.
type RecognitionEvent struct {
	Kind    EventKind `json:"type"`
	Text    string    `json:"text,omitempty"`
	Code    string    `json:"code,omitempty"`
	Aborted bool      `json:"aborted,omitempty"`
}

// Segmenter accumulates recognition results into utterances. Finalized text
// is emitted immediately; interim text only refreshes the live transcript.
// When the recognition stream ends while we are still supposed to be
// listening, any buffered text is flushed and the stream is restarted.
type Segmenter struct {
	mu        sync.Mutex
	listening bool
	buffer    []string
	interim   string

	emit    func(text string)
	restart func()
	onError func(code string)
	log     *zap.Logger
}

// NewSegmenter builds a segmenter. emit receives each finalized utterance,
// restart is invoked to reopen the recognition stream after an end event, and
// onError receives non-recoverable recognition error codes.
func NewSegmenter(emit func(string), restart func(), onError func(string), log *zap.Logger) *Segmenter {
	return &Segmenter{
		emit:    emit,
		restart: restart,
		onError: onError,
		log:     log,
	}
}

// Start marks the segmenter as listening and clears stale state.
func (s *Segmenter) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = true
	s.buffer = s.buffer[:0]
	s.interim = ""
}

// Stop marks the segmenter as not listening. Buffered text is discarded; a
// deliberate stop means the user no longer wants the pending speech acted on.
func (s *Segmenter) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = false
	s.buffer = s.buffer[:0]
	s.interim = ""
}

// Listening reports whether the segmenter currently accepts events.
func (s *Segmenter) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Transcript returns the live display text: the current interim hypothesis if
// one exists, otherwise the accumulated finalized buffer.
func (s *Segmenter) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interim != "" {
		return s.interim
	}
	return strings.Join(s.buffer, " ")
}

// HandleEvent processes one recognition event.
func (s *Segmenter) HandleEvent(ev RecognitionEvent) {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return
	}

	switch ev.Kind {
	case EventInterim:
		s.interim = ev.Text
		s.mu.Unlock()

	case EventFinal:
		text := strings.TrimSpace(ev.Text)
		s.interim = ""
		if text != "" {
			s.buffer = append(s.buffer, text)
		}
		utterance := strings.Join(s.buffer, " ")
		s.buffer = s.buffer[:0]
		s.mu.Unlock()
		if utterance != "" {
			s.emit(utterance)
		}

	case EventEnd:
		utterance := strings.Join(s.buffer, " ")
		s.buffer = s.buffer[:0]
		s.interim = ""
		stillListening := s.listening
		s.mu.Unlock()
		if utterance != "" {
			s.emit(utterance)
		}
		if stillListening {
			s.restart()
		}

	case EventError:
		if ev.Aborted || ev.Code == "aborted" {
			// Aborted recognitions are routine during restarts.
			s.mu.Unlock()
			return
		}
		s.listening = false
		s.buffer = s.buffer[:0]
		s.interim = ""
		s.mu.Unlock()
		s.log.Warn("recognition error, listening stopped", zap.String("code", ev.Code))
		if s.onError != nil {
			s.onError(ev.Code)
		}

	default:
		s.mu.Unlock()
	}
}
