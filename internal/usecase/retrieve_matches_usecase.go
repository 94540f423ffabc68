package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"talk-qa/internal/domain"
)

// RetrieveMatchesInput defines the input parameters for RetrieveMatches.
type RetrieveMatchesInput struct {
	Question string
}

// RetrieveMatchesOutput carries the filtered, normalized, score-ordered
// matches for one question.
type RetrieveMatchesOutput struct {
	Matches []domain.Match
}

// RetrieveMatchesUsecase defines the interface for similarity retrieval.
type RetrieveMatchesUsecase interface {
	Execute(ctx context.Context, input RetrieveMatchesInput) (*RetrieveMatchesOutput, error)
}

type retrieveMatchesUsecase struct {
	encoder  domain.VectorEncoder
	index    domain.VectorIndex
	topK     int
	minScore float64
	logger   *slog.Logger
}

// NewRetrieveMatchesUsecase creates a new RetrieveMatchesUsecase.
func NewRetrieveMatchesUsecase(
	encoder domain.VectorEncoder,
	index domain.VectorIndex,
	topK int,
	minScore float64,
	logger *slog.Logger,
) RetrieveMatchesUsecase {
	return &retrieveMatchesUsecase{
		encoder:  encoder,
		index:    index,
		topK:     topK,
		minScore: minScore,
		logger:   logger,
	}
}

// Execute embeds the question, queries the vector index, and normalizes the
// hits. Embedding or index failures are fatal for the request; malformed
// individual records are dropped instead, since partial retrieval beats
// total failure.
func (u *retrieveMatchesUsecase) Execute(ctx context.Context, input RetrieveMatchesInput) (*RetrieveMatchesOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("question is empty")
	}

	start := time.Now()

	embeddings, err := u.encoder.Encode(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to encode question: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(embeddings))
	}

	hits, err := u.index.Query(ctx, embeddings[0], u.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}

	matches := make([]domain.Match, 0, len(hits))
	dropped := 0
	for _, hit := range hits {
		if hit.Score < u.minScore {
			continue
		}
		m, ok := MatchFromHit(hit)
		if !ok {
			dropped++
			continue
		}
		matches = append(matches, m)
	}

	// Stable so the backend's ranking breaks score ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	u.logger.Info("matches_retrieved",
		slog.Int("hit_count", len(hits)),
		slog.Int("match_count", len(matches)),
		slog.Int("dropped_count", dropped),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return &RetrieveMatchesOutput{Matches: matches}, nil
}
