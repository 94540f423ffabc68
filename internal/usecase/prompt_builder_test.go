package usecase_test

import (
	"strings"
	"testing"

	"talk-qa/internal/domain"
	"talk-qa/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(talkID, title, speaker string, score float64) domain.Candidate {
	return domain.Candidate{
		TalkID:   talkID,
		Title:    title,
		Speaker:  speaker,
		Topics:   []string{"grit", "education"},
		Evidence: "evidence for " + title,
		Score:    score,
	}
}

func TestPromptBuilder_SystemTextConstantAcrossModes(t *testing.T) {
	builder := usecase.NewTalkPromptBuilder(0)
	candidates := []domain.Candidate{candidate("talk-1", "Talk One", "Alice", 0.9)}

	var systems []string
	for _, mode := range []domain.Mode{domain.ModeGeneral, domain.ModeTitleList, domain.ModeTitleSpeaker} {
		p, err := builder.Build(mode, "question?", candidates)
		require.NoError(t, err)
		systems = append(systems, p.System)
	}

	assert.Equal(t, systems[0], systems[1])
	assert.Equal(t, systems[1], systems[2])
	assert.Contains(t, systems[0], usecase.RefusalAnswer)
}

func TestPromptBuilder_CandidateBlockFields(t *testing.T) {
	builder := usecase.NewTalkPromptBuilder(0)
	candidates := []domain.Candidate{
		candidate("talk-1", "Talk One", "Alice", 0.9),
		candidate("talk-2", "Talk Two", "Bob", 0.7512),
	}

	p, err := builder.Build(domain.ModeGeneral, "what is grit?", candidates)
	require.NoError(t, err)

	assert.Contains(t, p.User, "[1] talk_id: talk-1")
	assert.Contains(t, p.User, "[2] talk_id: talk-2")
	assert.Contains(t, p.User, "title: Talk One")
	assert.Contains(t, p.User, "speaker: Bob")
	assert.Contains(t, p.User, `topics: ["grit","education"]`)
	assert.Contains(t, p.User, "evidence: evidence for Talk Two")
	assert.Contains(t, p.User, "score: 0.9000")
	assert.Contains(t, p.User, "score: 0.7512")
	assert.Contains(t, p.User, strings.Repeat("=", 40), "candidates must be delimited")
	assert.True(t, strings.HasSuffix(p.User, "Question: what is grit?"))
}

func TestPromptBuilder_ModeInstructions(t *testing.T) {
	builder := usecase.NewTalkPromptBuilder(0)
	candidates := []domain.Candidate{candidate("talk-1", "Talk One", "Alice", 0.9)}

	p, err := builder.Build(domain.ModeTitleList, "q", candidates)
	require.NoError(t, err)
	assert.Contains(t, p.User, "exactly 3 talk titles")
	assert.Contains(t, p.User, "one title per line")

	p, err = builder.Build(domain.ModeTitleSpeaker, "q", candidates)
	require.NoError(t, err)
	assert.Contains(t, p.User, "Title: <title>")
	assert.Contains(t, p.User, "Speaker: <speaker>")
}

func TestPromptBuilder_EmptyCandidates(t *testing.T) {
	builder := usecase.NewTalkPromptBuilder(0)
	p, err := builder.Build(domain.ModeGeneral, "q", nil)
	require.NoError(t, err)
	assert.Contains(t, p.User, "(no candidates retrieved)")
}

func TestPromptBuilder_UnknownModeRejected(t *testing.T) {
	builder := usecase.NewTalkPromptBuilder(0)
	_, err := builder.Build(domain.Mode(99), "q", nil)
	assert.Error(t, err)
}

func TestPromptBuilder_TopicsCapped(t *testing.T) {
	builder := usecase.NewTalkPromptBuilder(0)
	c := candidate("talk-1", "Talk One", "Alice", 0.9)
	c.Topics = nil
	for i := 0; i < 20; i++ {
		c.Topics = append(c.Topics, strings.Repeat("t", i+1))
	}

	p, err := builder.Build(domain.ModeGeneral, "q", []domain.Candidate{c})
	require.NoError(t, err)

	// 12 rendered topics, not 20.
	assert.Contains(t, p.User, `"tttttttttttt"]`)
	assert.NotContains(t, p.User, `"ttttttttttttt"`)
}

func TestClipText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "short text unchanged",
			input:    "short evidence",
			max:      900,
			expected: "short evidence",
		},
		{
			name:     "whitespace collapsed",
			input:    "a\n\tb   c",
			max:      900,
			expected: "a b c",
		},
		{
			name:     "over cap truncated with marker",
			input:    strings.Repeat("x", 1000),
			max:      900,
			expected: strings.Repeat("x", 900) + "...",
		},
		{
			name:     "exactly at cap unchanged",
			input:    strings.Repeat("x", 900),
			max:      900,
			expected: strings.Repeat("x", 900),
		},
		{
			name:     "zero cap disables clipping",
			input:    strings.Repeat("x", 1000),
			max:      0,
			expected: strings.Repeat("x", 1000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, usecase.ClipText(tt.input, tt.max))
		})
	}
}

func TestClipText_MultibyteSafe(t *testing.T) {
	input := strings.Repeat("é", 10)
	out := usecase.ClipText(input, 5)
	assert.Equal(t, strings.Repeat("é", 5)+"...", out)
}
