package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"talk-qa/internal/domain"

	"github.com/google/uuid"
)

// ErrMissingQuestion marks a request without a usable question. The HTTP
// layer maps it to a client error.
var ErrMissingQuestion = errors.New("question is required")

// AnswerQuestionInput encapsulates the parameters that drive one answer
// request. A nil Mode enables lexical mode detection.
type AnswerQuestionInput struct {
	Question string
	Mode     *domain.Mode
}

// PublicMatch is the caller-visible record of one filtered retrieval result.
type PublicMatch struct {
	TalkID   string
	Title    string
	Evidence string
	Score    float64
}

// PromptDebug carries the exact prompt the model received, for auditability.
type PromptDebug struct {
	System string
	User   string
}

// AnswerDebug surfaces metadata that aids troubleshooting.
type AnswerDebug struct {
	RetrievalSetID string
	Mode           domain.Mode
}

// AnswerQuestionOutput is the full response contract. Contexts carries every
// filtered match, deliberately more than the aggregated candidate set the
// model saw; Prompt is the faithful record of the model's actual input. The
// two are never merged.
type AnswerQuestionOutput struct {
	Answer   string
	Contexts []PublicMatch
	Prompt   PromptDebug
	Debug    AnswerDebug
}

// AnswerQuestionUsecase defines the contract for generating grounded answers.
type AnswerQuestionUsecase interface {
	Execute(ctx context.Context, input AnswerQuestionInput) (*AnswerQuestionOutput, error)
}

type answerQuestionUsecase struct {
	retrieve      RetrieveMatchesUsecase
	promptBuilder PromptBuilder
	llmClient     domain.LLMClient
	validator     OutputValidator
	maxCandidates int
	logger        *slog.Logger
}

// NewAnswerQuestionUsecase wires together the components of the answer
// pipeline.
func NewAnswerQuestionUsecase(
	retrieve RetrieveMatchesUsecase,
	promptBuilder PromptBuilder,
	llmClient domain.LLMClient,
	validator OutputValidator,
	maxCandidates int,
	logger *slog.Logger,
) AnswerQuestionUsecase {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &answerQuestionUsecase{
		retrieve:      retrieve,
		promptBuilder: promptBuilder,
		llmClient:     llmClient,
		validator:     validator,
		maxCandidates: maxCandidates,
		logger:        logger,
	}
}

// Execute runs the pipeline strictly in sequence: retrieve, aggregate,
// compose, generate, validate. All state is request-scoped; nothing is
// cached across requests. Service failures propagate as errors; grounding
// failures are a designed outcome and come back as a successful response
// carrying the refusal sentence.
func (u *answerQuestionUsecase) Execute(ctx context.Context, input AnswerQuestionInput) (*AnswerQuestionOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrMissingQuestion
	}

	retrievalSetID := uuid.NewString()
	mode := ResolveMode(question, input.Mode)
	log := u.logger.With(
		slog.String("retrieval_set_id", retrievalSetID),
		slog.String("mode", mode.String()))

	retrieved, err := u.retrieve.Execute(ctx, RetrieveMatchesInput{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve matches: %w", err)
	}
	matches := retrieved.Matches

	contexts := make([]PublicMatch, 0, len(matches))
	for _, m := range matches {
		contexts = append(contexts, PublicMatch{
			TalkID:   m.TalkID,
			Title:    m.Title,
			Evidence: m.Evidence,
			Score:    m.Score,
		})
	}

	candidates := AggregateCandidates(matches, u.maxCandidates)

	prompt, err := u.promptBuilder.Build(mode, question, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	output := &AnswerQuestionOutput{
		Contexts: contexts,
		Prompt:   PromptDebug{System: prompt.System, User: prompt.User},
		Debug:    AnswerDebug{RetrievalSetID: retrievalSetID, Mode: mode},
	}

	if len(candidates) == 0 {
		log.Warn("retrieval_empty", slog.Int("match_count", len(matches)))
		output.Answer = RefusalAnswer
		return output, nil
	}

	raw, err := u.llmClient.Generate(ctx, prompt.System, prompt.User)
	if err != nil {
		return nil, fmt.Errorf("llm generation failed: %w", err)
	}

	answer := strings.TrimSpace(raw)
	if answer == "" {
		log.Warn("llm_empty_response", slog.Int("candidate_count", len(candidates)))
		output.Answer = RefusalAnswer
		return output, nil
	}

	enforced := u.validator.Enforce(mode, answer, candidates)
	if enforced != answer {
		log.Warn("guardrail_rejected",
			slog.Int("candidate_count", len(candidates)),
			slog.Int("answer_length", len(answer)))
	}
	output.Answer = enforced

	log.Info("answer_completed",
		slog.Int("match_count", len(matches)),
		slog.Int("candidate_count", len(candidates)))
	return output, nil
}
