package domain

import "context"

// IndexHit is one raw similarity result from a vector index backend, before
// metadata normalization. Metadata keys vary between index generations, so
// the value stays untyped here.
type IndexHit struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// VectorIndex defines the interface for similarity search over the talk
// transcript embeddings.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]IndexHit, error)
}
