package pineconeapi

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

// DefaultControlPlaneURL is the hosted index service's control plane, used
// only to resolve a data-plane host when none is configured.
const DefaultControlPlaneURL = "https://api.pinecone.io"

// IndexConfig holds the settings needed to reach one hosted index.
type IndexConfig struct {
	// Name identifies the index on the control plane. Required unless Host
	// is set.
	Name string
	// APIKey authenticates both control-plane and data-plane calls.
	APIKey string
	// Host is the index's data-plane address. When empty it is resolved
	// from the control plane at construction time.
	Host string
	// ControlPlaneURL overrides the control plane endpoint, for tests.
	ControlPlaneURL string
}

// IndexClient queries a hosted vector index over its data-plane HTTP API.
// Host resolution happens once at construction so a misconfigured index
// fails fast as a configuration error instead of on the first request.
type IndexClient struct {
	host   string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

// NewIndexClient builds a client for the configured index, resolving the
// data-plane host through the control plane when it was not supplied.
func NewIndexClient(cfg IndexConfig, client *http.Client, logger *slog.Logger) (*IndexClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("index client: api key is required")
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		if cfg.Name == "" {
			return nil, fmt.Errorf("index client: index name is required when no host is configured")
		}
		resolved, err := describeIndexHost(cfg, client)
		if err != nil {
			return nil, fmt.Errorf("index client: failed to resolve host for index %q: %w", cfg.Name, err)
		}
		host = resolved
		logger.Info("index_host_resolved",
			slog.String("index", cfg.Name),
			slog.String("host", host))
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	return &IndexClient{
		host:   strings.TrimRight(host, "/"),
		apiKey: cfg.APIKey,
		client: client,
		logger: logger,
	}, nil
}

type describeIndexResponse struct {
	Host string `json:"host"`
}

func describeIndexHost(cfg IndexConfig, client *http.Client) (string, error) {
	controlURL := cfg.ControlPlaneURL
	if controlURL == "" {
		controlURL = DefaultControlPlaneURL
	}

	url := fmt.Sprintf("%s/indexes/%s", strings.TrimRight(controlURL, "/"), cfg.Name)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create describe request: %w", err)
	}
	req.Header.Set("Api-Key", cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call control plane: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("control plane returned %d: %s", resp.StatusCode, string(body))
	}

	var described describeIndexResponse
	if err := json.NewDecoder(resp.Body).Decode(&described); err != nil {
		return "", fmt.Errorf("failed to decode describe response: %w", err)
	}
	if described.Host == "" {
		return "", fmt.Errorf("control plane returned no host")
	}
	return described.Host, nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query returns the topK nearest stored items with metadata attached,
// in the index's own relevance order.
func (c *IndexClient) Query(ctx context.Context, vector []float32, topK int) ([]domain.IndexHit, error) {
	start := time.Now()

	payload, err := json.Marshal(queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query request: %w", err)
	}

	url := fmt.Sprintf("%s/query", c.host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("index_query_failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return nil, fmt.Errorf("failed to call vector index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("index_query_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return nil, fmt.Errorf("vector index returned %d: %s", resp.StatusCode, string(body))
	}

	var queryResp queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&queryResp); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}

	hits := make([]domain.IndexHit, 0, len(queryResp.Matches))
	for _, m := range queryResp.Matches {
		hits = append(hits, domain.IndexHit{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}

	c.logger.Info("index_query_completed",
		slog.Int("hit_count", len(hits)),
		slog.Int("top_k", topK),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return hits, nil
}

var _ domain.VectorIndex = (*IndexClient)(nil)
