package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"talk-qa/internal/domain"
)

// PgvectorIndex implements domain.VectorIndex on a local pgvector table,
// as an alternative to the hosted index. It returns the same id/score/
// metadata shape as the hosted client so the retriever's normalization path
// is identical for both backends.
type PgvectorIndex struct {
	pool *pgxpool.Pool
}

// NewPgvectorIndex creates a pgvector-backed index over the given pool.
func NewPgvectorIndex(pool *pgxpool.Pool) *PgvectorIndex {
	return &PgvectorIndex{pool: pool}
}

// Query runs cosine similarity search over talk_chunks and maps rows into
// raw index hits. Similarity is 1 - cosine distance, matching the hosted
// index's score semantics.
func (r *PgvectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]domain.IndexHit, error) {
	query := `
		SELECT chunk_id, talk_id, title, speaker, topics, content,
		       1 - (embedding <=> $1) AS score
		FROM talk_chunks
		ORDER BY embedding <=> $1
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query talk_chunks: %w", err)
	}
	defer rows.Close()

	var hits []domain.IndexHit
	for rows.Next() {
		var (
			chunkID string
			talkID  string
			title   string
			speaker *string
			topics  []string
			content string
			score   float64
		)
		if err := rows.Scan(&chunkID, &talkID, &title, &speaker, &topics, &content, &score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}

		metadata := map[string]any{
			"talk_id": talkID,
			"title":   title,
			"topics":  topics,
			"text":    content,
		}
		if speaker != nil {
			metadata["speaker"] = *speaker
		}

		hits = append(hits, domain.IndexHit{
			ID:       chunkID,
			Score:    score,
			Metadata: metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk rows: %w", err)
	}

	return hits, nil
}

var _ domain.VectorIndex = (*PgvectorIndex)(nil)
