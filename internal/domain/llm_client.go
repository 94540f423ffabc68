package domain

import "context"

// LLMClient defines the capability to send a two-message (system + user)
// instruction to a generative model and receive the completion text.
type LLMClient interface {
	Generate(ctx context.Context, systemText, userText string) (string, error)
	Version() string
}
