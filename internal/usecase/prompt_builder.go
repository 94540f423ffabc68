package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"talk-qa/internal/domain"
)

// RefusalAnswer is the literal sentence the model must emit when the context
// cannot support an answer. The guardrail substitutes the same sentence when
// a structured answer fails validation, so callers cannot tell the two cases
// apart.
const RefusalAnswer = "I don't know based on the provided talk transcripts."

// TitleListCount is the number of titles a title_list answer must contain.
const TitleListCount = 3

// DefaultEvidenceClip is the hard character cap applied to each candidate's
// evidence before it enters the prompt.
const DefaultEvidenceClip = 900

const (
	topicsRenderCap = 12
	truncationMark  = "..."
)

// candidateDelimiter separates rendered candidates inside the prompt. It is
// distinct from snippetSeparator so nested evidence stays readable.
var candidateDelimiter = "\n" + strings.Repeat("=", 40) + "\n"

// systemPrompt is constant across requests and modes; the mode-specific
// instructions live in the user message.
const systemPrompt = `You are an assistant that answers questions about a library of recorded talks.
Follow these rules on every request:
- Answer strictly and only from the context provided in the user message.
- If the context is insufficient to answer, reply with exactly this sentence: ` + RefusalAnswer + `
- When an exact number of titles is requested, output only titles and nothing else.
- Never invent talk titles, speaker names, or facts that are not in the context.
- When an output format is specified, follow it exactly.`

// Prompt is the two-message instruction sent to the generation model.
type Prompt struct {
	System string
	User   string
}

// PromptBuilder renders the generation prompt for a resolved mode.
type PromptBuilder interface {
	Build(mode domain.Mode, question string, candidates []domain.Candidate) (Prompt, error)
}

// TalkPromptBuilder renders a fixed, delimited candidate block plus
// mode-specific instructions. The layout is part of the contract: the model
// is told to copy values verbatim from it, and the guardrail later checks
// those copies, so formatting drift here surfaces as rejections downstream.
type TalkPromptBuilder struct {
	evidenceClip int
}

// NewTalkPromptBuilder creates a prompt builder with the given evidence cap.
func NewTalkPromptBuilder(evidenceClip int) PromptBuilder {
	if evidenceClip <= 0 {
		evidenceClip = DefaultEvidenceClip
	}
	return &TalkPromptBuilder{evidenceClip: evidenceClip}
}

// Build renders the system and user messages for the request.
func (b *TalkPromptBuilder) Build(mode domain.Mode, question string, candidates []domain.Candidate) (Prompt, error) {
	var sb strings.Builder

	switch mode {
	case domain.ModeTitleList:
		fmt.Fprintf(&sb, "Pick exactly %d talk titles from the candidates below that best answer the question.\n", TitleListCount)
		sb.WriteString("Copy each title verbatim from the candidate block. Output one title per line with no numbering, bullets, or extra text.\n")
		fmt.Fprintf(&sb, "If fewer than %d suitable titles exist, reply with exactly this sentence: %s\n\n", TitleListCount, RefusalAnswer)
	case domain.ModeTitleSpeaker:
		sb.WriteString("Pick the single candidate below that best matches the question and output exactly two lines:\n")
		sb.WriteString("Title: <title>\n")
		sb.WriteString("Speaker: <speaker>\n")
		sb.WriteString("Copy both values verbatim from the candidate block.\n")
		fmt.Fprintf(&sb, "If no candidate plausibly matches the requested theme, reply with exactly this sentence: %s\n\n", RefusalAnswer)
	case domain.ModeGeneral:
		sb.WriteString("Answer the question using only the context in the candidate block below.\n")
		fmt.Fprintf(&sb, "If the context does not explicitly support an answer, reply with exactly this sentence: %s\n\n", RefusalAnswer)
	default:
		return Prompt{}, fmt.Errorf("unsupported mode %v", mode)
	}

	sb.WriteString("Candidates:\n")
	sb.WriteString(b.renderCandidateBlock(candidates))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(strings.TrimSpace(question))

	return Prompt{System: systemPrompt, User: sb.String()}, nil
}

func (b *TalkPromptBuilder) renderCandidateBlock(candidates []domain.Candidate) string {
	if len(candidates) == 0 {
		return "(no candidates retrieved)"
	}

	blocks := make([]string, 0, len(candidates))
	for i, c := range candidates {
		var sb strings.Builder
		fmt.Fprintf(&sb, "[%d] talk_id: %s\n", i+1, c.TalkID)
		fmt.Fprintf(&sb, "title: %s\n", c.Title)
		fmt.Fprintf(&sb, "speaker: %s\n", c.Speaker)
		fmt.Fprintf(&sb, "topics: %s\n", renderTopics(c.Topics))
		fmt.Fprintf(&sb, "evidence: %s\n", ClipText(c.Evidence, b.evidenceClip))
		fmt.Fprintf(&sb, "score: %.4f", c.Score)
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, candidateDelimiter)
}

func renderTopics(topics []string) string {
	rendered := NormalizeTopics(topics)
	if len(rendered) > topicsRenderCap {
		rendered = rendered[:topicsRenderCap]
	}
	if rendered == nil {
		rendered = []string{}
	}
	data, err := json.Marshal(rendered)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// ClipText collapses runs of whitespace to single spaces and hard-caps the
// result at max characters, appending a truncation marker when anything was
// cut. Text at or under the cap comes back unchanged.
func ClipText(s string, max int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	if max <= 0 {
		return collapsed
	}
	runes := []rune(collapsed)
	if len(runes) <= max {
		return collapsed
	}
	return string(runes[:max]) + truncationMark
}
