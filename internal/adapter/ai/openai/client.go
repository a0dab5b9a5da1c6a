package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/infrastructure/circuitbreaker"
)

const interpretSystemPrompt = `You are a command interpreter for a voice-controlled browser assistant.
Convert the user's spoken command into a JSON object with exactly two keys: "action" and "args".
Allowed actions and their args:
  open_search {"engine": "google"|"youtube", "query": string}
  open_url    {"url": string}
  open_site   {"site": "facebook"|"gmail"|"github"|"youtube"}
  navigate    {"path": string}
  scroll      {"direction": "up"|"down"|"top"|"bottom"}
  reload      {}
  history     {"direction": "back"|"forward"}
  say         {"text": string}
  time        {}
  date        {}
If the command asks to open local files, folders or directories, respond with
{"action":"say","args":{"text":"I cannot access local files from the browser."}}.
If unsure, use open_search with engine "google" and the full command as the query.
Respond with only the JSON object.`

const chatSystemPrompt = `You are a friendly voice assistant. Reply in one or two short spoken sentences, no markdown.`

// Client talks to the OpenAI chat completions API. Outbound calls go through
// a circuit breaker so a degraded upstream fails fast instead of stalling the
// voice pipeline.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *circuitbreaker.HTTPClient
	log     *zap.Logger
}

func NewClient(apiKey, model, baseURL string, log *zap.Logger) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    circuitbreaker.NewHTTPClientWithSettings(circuitbreaker.DefaultHTTPClientSettings("openai"), log),
		log:     log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Interpret converts spoken text into an action. Any transport or parse
// failure is an error; the caller falls back to the rule table.
func (c *Client) Interpret(ctx context.Context, text, locale string) (*domain.Action, error) {
	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: interpretSystemPrompt},
		{Role: "user", Content: text},
	}, true)
	if err != nil {
		return nil, err
	}

	var action domain.Action
	if err := json.Unmarshal([]byte(content), &action); err != nil {
		return nil, fmt.Errorf("openai: parse action: %w", err)
	}
	return &action, nil
}

// Chat produces a short conversational reply.
func (c *Client) Chat(ctx context.Context, message, locale string) (string, error) {
	system := chatSystemPrompt
	if locale != "" {
		system += " Reply in the language of locale " + locale + "."
	}
	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: message},
	}, false)
}

func (c *Client) complete(ctx context.Context, messages []chatMessage, jsonMode bool) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai: API key not configured")
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
	}
	if jsonMode {
		reqBody.ResponseFormat = &formatSpec{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("openai: API error status %d: %s", resp.StatusCode, body)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
