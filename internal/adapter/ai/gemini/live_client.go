package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/arialabs/aria/internal/domain"
)

const liveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateContent"

const interpretInstruction = `You convert spoken browser commands into JSON with exactly two keys: "action" and "args".
Allowed actions: open_search, open_url, open_site, navigate, scroll, reload, history, say, time, date.
open_search args: engine ("google" or "youtube") and query. open_url args: url.
open_site args: site (facebook, gmail, github, youtube). navigate args: path.
scroll args: direction (up, down, top, bottom). history args: direction (back, forward). say args: text.
For requests to open local files or folders answer {"action":"say","args":{"text":"I cannot access local files from the browser."}}.
When unsure, answer with open_search on google using the whole command as the query.
Output only the JSON object, no prose.`

// LiveClient interprets commands over the Gemini Live websocket API. Each
// Interpret call opens a fresh session: one setup message, one text turn,
// then reads until the turn completes.
type LiveClient struct {
	apiKey  string
	modelID string
	logger  *zap.Logger
}

func NewLiveClient(apiKey, modelID string, logger *zap.Logger) *LiveClient {
	if modelID == "" {
		modelID = "gemini-2.0-flash"
	}
	return &LiveClient{
		apiKey:  apiKey,
		modelID: modelID,
		logger:  logger,
	}
}

func (c *LiveClient) Interpret(ctx context.Context, text, locale string) (*domain.Action, error) {
	reply, err := c.generate(ctx, text)
	if err != nil {
		return nil, err
	}

	reply = stripCodeFence(reply)
	var action domain.Action
	if err := json.Unmarshal([]byte(reply), &action); err != nil {
		return nil, fmt.Errorf("gemini: parse action: %w", err)
	}
	return &action, nil
}

func (c *LiveClient) generate(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini: API key not configured")
	}

	conn, _, err := websocket.Dial(ctx, liveEndpoint+"?key="+c.apiKey, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	setup := map[string]interface{}{
		"setup": map[string]interface{}{
			"model": "models/" + c.modelID,
			"generation_config": map[string]interface{}{
				"response_modalities": []string{"TEXT"},
				"temperature":         0,
			},
			"system_instruction": map[string]interface{}{
				"parts": []map[string]string{
					{"text": interpretInstruction},
				},
			},
		},
	}
	if err := c.send(ctx, conn, setup); err != nil {
		return "", err
	}

	// The server acknowledges the setup before accepting content.
	if _, _, err := conn.Read(ctx); err != nil {
		return "", fmt.Errorf("gemini: setup ack: %w", err)
	}

	turn := map[string]interface{}{
		"client_content": map[string]interface{}{
			"turns": []map[string]interface{}{
				{
					"role": "user",
					"parts": []map[string]string{
						{"text": text},
					},
				},
			},
			"turn_complete": true,
		},
	}
	if err := c.send(ctx, conn, turn); err != nil {
		return "", err
	}

	var reply strings.Builder
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return "", fmt.Errorf("gemini: read: %w", err)
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("gemini: skipping unparseable frame", zap.Error(err))
			continue
		}
		for _, part := range msg.ServerContent.ModelTurn.Parts {
			reply.WriteString(part.Text)
		}
		if msg.ServerContent.TurnComplete {
			break
		}
	}

	if reply.Len() == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return reply.String(), nil
}

func (c *LiveClient) send(ctx context.Context, conn *websocket.Conn, msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

type serverMessage struct {
	ServerContent struct {
		ModelTurn struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"modelTurn"`
		TurnComplete bool `json:"turnComplete"`
	} `json:"serverContent"`
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
