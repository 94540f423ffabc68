package qahttp

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"talk-qa/internal/domain"
	"talk-qa/internal/usecase"
)

// AnswerRequest is the wire shape of one question.
type AnswerRequest struct {
	Question string  `json:"question"`
	Mode     *string `json:"mode,omitempty"`
}

// ContextRecord is the wire shape of one public retrieval record.
type ContextRecord struct {
	TalkID string  `json:"talk_id"`
	Title  string  `json:"title"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// PromptDebug mirrors the exact prompt the model received.
type PromptDebug struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// AnswerDebug carries request troubleshooting metadata.
type AnswerDebug struct {
	RetrievalSetID string `json:"retrieval_set_id"`
	Mode           string `json:"mode"`
}

// AnswerResponse is the full response contract, debug fields included.
type AnswerResponse struct {
	Response string          `json:"response"`
	Context  []ContextRecord `json:"context"`
	Prompt   PromptDebug     `json:"prompt"`
	Debug    AnswerDebug     `json:"debug"`
}

// Handler exposes the answer pipeline over HTTP.
type Handler struct {
	answerUsecase usecase.AnswerQuestionUsecase
}

// NewHandler creates the HTTP handler.
func NewHandler(answerUsecase usecase.AnswerQuestionUsecase) *Handler {
	return &Handler{answerUsecase: answerUsecase}
}

// Answer a question from the talk corpus
// (POST /v1/answer)
func (h *Handler) Answer(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	input := usecase.AnswerQuestionInput{Question: req.Question}
	if req.Mode != nil {
		mode, ok := domain.ParseMode(*req.Mode)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown mode: " + *req.Mode})
		}
		input.Mode = &mode
	}

	output, err := h.answerUsecase.Execute(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingQuestion) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	contexts := make([]ContextRecord, 0, len(output.Contexts))
	for _, m := range output.Contexts {
		contexts = append(contexts, ContextRecord{
			TalkID: m.TalkID,
			Title:  m.Title,
			Text:   m.Evidence,
			Score:  m.Score,
		})
	}

	return c.JSON(http.StatusOK, AnswerResponse{
		Response: output.Answer,
		Context:  contexts,
		Prompt:   PromptDebug{System: output.Prompt.System, User: output.Prompt.User},
		Debug: AnswerDebug{
			RetrievalSetID: output.Debug.RetrievalSetID,
			Mode:           output.Debug.Mode.String(),
		},
	})
}

// RegisterRoutes wires the answer endpoint and health probes. The readiness
// check is nil-safe: backends without a local dependency are always ready.
func RegisterRoutes(e *echo.Echo, h *Handler, ready func(ctx context.Context) error) {
	e.POST("/v1/answer", h.Answer)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if ready != nil {
			if err := ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})
}
