package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"talk-qa/internal/adapter/openaiapi"
	"talk-qa/internal/adapter/pineconeapi"
	"talk-qa/internal/adapter/repository"
	"talk-qa/internal/domain"
	"talk-qa/internal/infra"
	"talk-qa/internal/infra/config"
	"talk-qa/internal/infra/httpclient"
	"talk-qa/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	AnswerUsecase usecase.AnswerQuestionUsecase

	// Pool is non-nil only for the pgvector backend; it drives the
	// readiness probe and must be closed on shutdown.
	Pool *pgxpool.Pool
}

// NewApplicationComponents wires all dependencies from config. Construction
// fails fast on configuration errors: missing credentials, an unknown vector
// backend, or an unresolvable index host.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, log *slog.Logger) (*ApplicationComponents, error) {
	llmHTTP := httpclient.NewPooledClient(time.Duration(cfg.LLM.Timeout) * time.Second)
	vectorHTTP := httpclient.NewPooledClient(time.Duration(cfg.Vector.Timeout) * time.Second)

	encoder, err := openaiapi.NewEmbeddingClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.EmbeddingModel, llmHTTP, log)
	if err != nil {
		return nil, err
	}
	generator, err := openaiapi.NewChatClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.ChatModel, llmHTTP, log)
	if err != nil {
		return nil, err
	}

	var (
		index domain.VectorIndex
		pool  *pgxpool.Pool
	)
	switch cfg.Vector.Backend {
	case config.VectorBackendPinecone:
		index, err = pineconeapi.NewIndexClient(pineconeapi.IndexConfig{
			Name:   cfg.Vector.PineconeIndex,
			APIKey: cfg.Vector.PineconeAPIKey,
			Host:   cfg.Vector.PineconeHost,
		}, vectorHTTP, log)
		if err != nil {
			return nil, err
		}
	case config.VectorBackendPgvector:
		pool, err = infra.NewPostgresDB(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		index = repository.NewPgvectorIndex(pool)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Vector.Backend)
	}

	retrieveUsecase := usecase.NewRetrieveMatchesUsecase(
		encoder, index, cfg.RAG.TopK, cfg.RAG.MinScore, log)
	promptBuilder := usecase.NewTalkPromptBuilder(cfg.RAG.EvidenceClip)
	answerUsecase := usecase.NewAnswerQuestionUsecase(
		retrieveUsecase, promptBuilder, generator, usecase.NewOutputValidator(),
		cfg.RAG.MaxCandidates, log)

	return &ApplicationComponents{
		AnswerUsecase: answerUsecase,
		Pool:          pool,
	}, nil
}

// Ready reports whether local dependencies are reachable. Hosted backends
// have nothing to probe.
func (c *ApplicationComponents) Ready(ctx context.Context) error {
	if c.Pool != nil {
		return c.Pool.Ping(ctx)
	}
	return nil
}

// Close releases owned resources.
func (c *ApplicationComponents) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
