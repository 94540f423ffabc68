package usecase_test

import (
	"testing"

	"talk-qa/internal/domain"
	"talk-qa/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTopics(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected []string
	}{
		{
			name:     "comma separated string with duplicates",
			input:    "a, b, b",
			expected: []string{"a", "b"},
		},
		{
			name:     "list with untrimmed entries",
			input:    []any{"a", " b "},
			expected: []string{"a", "b"},
		},
		{
			name:     "string slice passthrough",
			input:    []string{"creativity", "fear"},
			expected: []string{"creativity", "fear"},
		},
		{
			name:     "order preserved",
			input:    "z, a, m",
			expected: []string{"z", "a", "m"},
		},
		{
			name:     "empty entries dropped",
			input:    "a,,  ,b",
			expected: []string{"a", "b"},
		},
		{
			name:     "nil input",
			input:    nil,
			expected: nil,
		},
		{
			name:     "non-string list entries ignored",
			input:    []any{"a", 42, "b"},
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, usecase.NormalizeTopics(tt.input))
		})
	}
}

func TestMatchFromHit_FallbackKeys(t *testing.T) {
	hit := domain.IndexHit{
		ID:    "chunk-1",
		Score: 0.8,
		Metadata: map[string]any{
			"id":      "talk-42",
			"title":   "The Power of Vulnerability",
			"speaker": "Brene Brown",
			"topics":  "psychology, connection",
			"chunk":   "some transcript text",
		},
	}

	m, ok := usecase.MatchFromHit(hit)
	require.True(t, ok)
	assert.Equal(t, "talk-42", m.TalkID)
	assert.Equal(t, "The Power of Vulnerability", m.Title)
	assert.Equal(t, "Brene Brown", m.Speaker)
	assert.Equal(t, []string{"psychology", "connection"}, m.Topics)
	assert.Equal(t, "some transcript text", m.Evidence)
	assert.Equal(t, 0.8, m.Score)
}

func TestMatchFromHit_PrimaryKeysWin(t *testing.T) {
	hit := domain.IndexHit{
		Score: 0.5,
		Metadata: map[string]any{
			"talk_id": "talk-1",
			"id":      "legacy-1",
			"title":   "A Talk",
			"text":    "primary text",
			"chunk":   "legacy chunk",
		},
	}

	m, ok := usecase.MatchFromHit(hit)
	require.True(t, ok)
	assert.Equal(t, "talk-1", m.TalkID)
	assert.Equal(t, "primary text", m.Evidence)
}

func TestMatchFromHit_DropsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
	}{
		{
			name:     "missing identifier",
			metadata: map[string]any{"title": "A Talk", "text": "evidence"},
		},
		{
			name:     "missing title",
			metadata: map[string]any{"talk_id": "talk-1", "text": "evidence"},
		},
		{
			name:     "missing evidence",
			metadata: map[string]any{"talk_id": "talk-1", "title": "A Talk"},
		},
		{
			name:     "whitespace only title",
			metadata: map[string]any{"talk_id": "talk-1", "title": "   ", "text": "evidence"},
		},
		{
			name:     "non-string identifier",
			metadata: map[string]any{"talk_id": 7, "title": "A Talk", "text": "evidence"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := usecase.MatchFromHit(domain.IndexHit{Metadata: tt.metadata})
			assert.False(t, ok)
		})
	}
}
