package usecase

import (
	"strings"

	"talk-qa/internal/domain"
)

// bulletCutset covers the numbering and bullet punctuation models prepend to
// list items despite being told not to.
const bulletCutset = "-*0123456789.() \t"

// OutputValidator is the last line of defense against hallucinated titles and
// speakers in the two structured modes. It checks structure and exact-string
// membership against the candidate set, trading recall (a correct answer in
// the wrong shape is rejected) for precision (no fabricated title or speaker
// reaches the caller). General answers pass through unchecked.
type OutputValidator struct {
	titleCount int
}

// NewOutputValidator creates a validator enforcing the fixed title count.
func NewOutputValidator() OutputValidator {
	return OutputValidator{titleCount: TitleListCount}
}

// Validate reports whether the answer satisfies the mode's structural
// contract against the candidate set. Validation is idempotent: an accepted
// answer re-validates to the same result.
func (v OutputValidator) Validate(mode domain.Mode, answer string, candidates []domain.Candidate) bool {
	switch mode {
	case domain.ModeGeneral:
		return true
	case domain.ModeTitleList:
		return v.validTitleList(answer, candidates)
	case domain.ModeTitleSpeaker:
		return v.validTitleSpeaker(answer, candidates)
	}
	return false
}

// Enforce returns the answer unchanged when it validates and the fixed
// refusal sentence when it does not. Substituting the refusal sentence for
// itself is a no-op, so enforcement can be applied repeatedly.
func (v OutputValidator) Enforce(mode domain.Mode, answer string, candidates []domain.Candidate) string {
	if v.Validate(mode, answer, candidates) {
		return answer
	}
	return RefusalAnswer
}

func (v OutputValidator) validTitleList(answer string, candidates []domain.Candidate) bool {
	titles := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		titles[c.Title] = struct{}{}
	}

	lines := nonEmptyLines(answer)
	if len(lines) != v.titleCount {
		return false
	}
	for _, line := range lines {
		// Raw form first: titles that themselves start with digits would
		// lose their prefix to bullet stripping.
		if _, ok := titles[line]; ok {
			continue
		}
		stripped := strings.TrimSpace(strings.TrimLeft(line, bulletCutset))
		if _, ok := titles[stripped]; !ok {
			return false
		}
	}
	return true
}

func (v OutputValidator) validTitleSpeaker(answer string, candidates []domain.Candidate) bool {
	// Title and speaker must come from the same candidate. Matching them
	// independently would accept a pairing the corpus never made.
	for _, c := range candidates {
		if c.Speaker == "" {
			continue
		}
		if strings.Contains(answer, c.Title) && strings.Contains(answer, c.Speaker) {
			return true
		}
	}
	return false
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
