package openaiapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"talk-qa/internal/domain"
)

// Zero temperature: structured modes depend on the model copying titles and
// speakers verbatim.
const chatTemperature = 0.0

// ChatClient sends the composed system+user instruction to an
// OpenAI-compatible /v1/chat/completions endpoint.
type ChatClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

// NewChatClient constructs a generation client. A missing API key is a
// configuration error surfaced immediately.
func NewChatClient(baseURL, apiKey, model string, client *http.Client, logger *slog.Logger) (*ChatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("chat client: api key is required")
	}
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  client,
		logger:  logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the two-message instruction and returns the trimmed
// completion text. Failures propagate; there is no retry here.
func (g *ChatClient) Generate(ctx context.Context, systemText, userText string) (string, error) {
	start := time.Now()

	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemText},
			{Role: "user", Content: userText},
		},
		Temperature: chatTemperature,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("chat_request_failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return "", fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		g.logger.Error("chat_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return "", fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("generation response contains no choices")
	}

	g.logger.Info("chat_completed",
		slog.String("model", g.model),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// Version returns the wrapped model id.
func (g *ChatClient) Version() string {
	return g.model
}

var _ domain.LLMClient = (*ChatClient)(nil)
