package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/assistant"
	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/observability/telemetry"
	"github.com/arialabs/aria/internal/ports"
)

// serverMessage is one frame pushed to the browser.
type serverMessage struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Action    *domain.Action  `json:"action,omitempty"`
	Persona   *domain.Persona `json:"persona,omitempty"`
	Listening *bool           `json:"listening,omitempty"`
	Code      string          `json:"code,omitempty"`
}

// Session is one browser voice connection: it feeds recognition events into
// the segmenter, runs finalized utterances through the pipeline, and pushes
// actions and responses back over the socket.
type Session struct {
	conn   *websocket.Conn
	userID string

	personaMu sync.RWMutex
	persona   domain.Persona

	segmenter *assistant.Segmenter
	pipeline  *assistant.Pipeline

	writeMu sync.Mutex
	log     *zap.Logger
}

// SessionConfig collects the per-connection collaborators.
type SessionConfig struct {
	Conn        *websocket.Conn
	UserID      string
	Persona     domain.Persona
	Interpreter ports.Interpreter
	Chat        ports.Conversationalist
	Recorder    ports.HistoryRecorder
	Timeout     time.Duration
	Logger      *zap.Logger
}

func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		conn:    cfg.Conn,
		userID:  cfg.UserID,
		persona: cfg.Persona,
		log:     cfg.Logger,
	}

	s.pipeline = assistant.NewPipeline(assistant.PipelineConfig{
		Interpreter: cfg.Interpreter,
		Chat:        cfg.Chat,
		Persona:     s,
		Executor:    assistant.NewExecutor(s, cfg.Logger),
		Recorder:    cfg.Recorder,
		OnResponse:  s.sendResponse,
		Timeout:     cfg.Timeout,
		Logger:      cfg.Logger,
	})

	s.segmenter = assistant.NewSegmenter(
		s.handleUtterance,
		s.requestRestart,
		s.handleRecognitionError,
		cfg.Logger,
	)

	return s
}

// Persona implements ports.PersonaSource for the pipeline.
func (s *Session) Persona() domain.Persona {
	s.personaMu.RLock()
	defer s.personaMu.RUnlock()
	return s.persona
}

func (s *Session) setPersona(persona domain.Persona) {
	s.personaMu.Lock()
	s.persona = persona
	s.personaMu.Unlock()
	s.write(serverMessage{Type: "persona", Persona: &persona})
}

// Dispatch implements ports.Dispatcher: the browser performs the side effect.
func (s *Session) Dispatch(action domain.Action) error {
	return s.write(serverMessage{Type: "action", Action: &action})
}

// Run reads client frames until the connection drops.
func (s *Session) Run(greet bool) {
	if greet {
		persona := s.Persona()
		s.write(serverMessage{
			Type: "greeting",
			Text: fmt.Sprintf("Hello, I am %s. How can I help you?", persona.AssistantName),
		})
	}

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var ev assistant.RecognitionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.log.Debug("discarding malformed client frame", zap.Error(err))
			continue
		}
		s.handleClientEvent(ev)
	}
}

func (s *Session) handleClientEvent(ev assistant.RecognitionEvent) {
	switch ev.Kind {
	case "start":
		s.segmenter.Start()
		s.sendState(true)
	case "stop":
		s.segmenter.Stop()
		s.sendState(false)
	default:
		s.segmenter.HandleEvent(ev)
		if ev.Kind == assistant.EventInterim {
			s.write(serverMessage{Type: "transcript", Text: s.segmenter.Transcript()})
		}
	}
}

func (s *Session) handleUtterance(text string) {
	s.write(serverMessage{Type: "transcript", Text: text})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.pipeline.SubmitUtterance(ctx, text)
}

func (s *Session) requestRestart() {
	// The browser owns the recognition stream; ask it to reopen.
	s.write(serverMessage{Type: "restart"})
}

func (s *Session) handleRecognitionError(code string) {
	s.write(serverMessage{Type: "error", Code: code})
	s.sendState(false)
}

func (s *Session) sendResponse(text string) {
	s.write(serverMessage{Type: "response", Text: text})
}

func (s *Session) sendState(listening bool) {
	s.write(serverMessage{Type: "state", Listening: &listening})
}

func (s *Session) write(msg serverMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Handler upgrades authenticated connections into voice sessions.
type Handler struct {
	hub         *Hub
	interpreter ports.Interpreter
	chat        ports.Conversationalist
	profiles    ports.ProfileService
	recorderFor func(userID string) ports.HistoryRecorder
	timeout     time.Duration
	greet       bool
	log         *zap.Logger
}

type HandlerConfig struct {
	Hub         *Hub
	Interpreter ports.Interpreter
	Chat        ports.Conversationalist
	Profiles    ports.ProfileService
	RecorderFor func(userID string) ports.HistoryRecorder
	Timeout     time.Duration
	Greet       bool
	Logger      *zap.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		hub:         cfg.Hub,
		interpreter: cfg.Interpreter,
		chat:        cfg.Chat,
		profiles:    cfg.Profiles,
		recorderFor: cfg.RecorderFor,
		timeout:     cfg.Timeout,
		greet:       cfg.Greet,
		log:         cfg.Logger,
	}
}

// Serve runs one voice session to completion.
func (h *Handler) Serve(c *websocket.Conn) {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		c.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	persona, err := h.profiles.Persona(ctx, userID)
	cancel()
	if err != nil {
		h.log.Warn("persona lookup failed, using defaults",
			zap.String("user_id", userID),
			zap.Error(err))
		persona = domain.Persona{
			AssistantName: "Aria",
			VoiceHint:     domain.VoiceHintFor("Aria"),
			Locale:        "en-US",
		}
	}

	var recorder ports.HistoryRecorder
	if h.recorderFor != nil {
		recorder = h.recorderFor(userID)
	}

	session := NewSession(SessionConfig{
		Conn:        c,
		UserID:      userID,
		Persona:     persona,
		Interpreter: h.interpreter,
		Chat:        h.chat,
		Recorder:    recorder,
		Timeout:     h.timeout,
		Logger:      h.log.With(zap.String("user_id", userID)),
	})

	h.hub.add(session)
	telemetry.ActiveSessions.Inc()
	defer func() {
		h.hub.remove(session)
		telemetry.ActiveSessions.Dec()
		c.Close()
	}()

	session.Run(h.greet)
}

// SetupRoutes registers the voice websocket endpoint.
func SetupRoutes(app *fiber.App, handler *Handler, authGuard fiber.Handler) {
	app.Use("/ws/assistant", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/assistant", authGuard, websocket.New(handler.Serve))
}
