package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/assistant"
	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/ports"
)

// AIHandler exposes interpretation to thin clients that run the browser
// side effects themselves. The remote interpreter is optional; the rule
// table always answers.
type AIHandler struct {
	interpreter ports.Interpreter
	chat        ports.Conversationalist
	log         *zap.Logger
}

func NewAIHandler(interpreter ports.Interpreter, chat ports.Conversationalist, log *zap.Logger) *AIHandler {
	return &AIHandler{
		interpreter: interpreter,
		chat:        chat,
		log:         log,
	}
}

type InterpretRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

func (h *AIHandler) Interpret(c *fiber.Ctx) error {
	var req InterpretRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
	}

	utterance := domain.NewUtterance(req.Text, req.Locale)

	if h.interpreter != nil {
		action, err := h.interpreter.Interpret(c.Context(), utterance.Normalized, utterance.Locale)
		if err == nil && action != nil && action.Valid() {
			return c.JSON(fiber.Map{
				"ok":     true,
				"parsed": action,
				"source": domain.SourceRemote,
			})
		}
		if err != nil {
			h.log.Warn("remote interpretation failed, using rule table", zap.Error(err))
		}
	}

	result := assistant.Parse(utterance)
	return c.JSON(fiber.Map{
		"ok":     true,
		"parsed": result.Action,
		"source": result.Source,
		"rule":   result.Rule,
	})
}

type ChatRequest struct {
	Message string `json:"message"`
	Locale  string `json:"locale"`
}

func (h *AIHandler) Chat(c *fiber.Ctx) error {
	if h.chat == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Chat is not configured"})
	}

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}

	reply, err := h.chat.Chat(c.Context(), req.Message, req.Locale)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Chat upstream failed"})
	}
	return c.JSON(fiber.Map{"ok": true, "response": reply})
}
