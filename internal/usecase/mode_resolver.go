package usecase

import (
	"strings"

	"talk-qa/internal/domain"
)

// Lexical cues for auto-detection. Deliberately narrow: a false positive
// locks the answer into a rigid output format the user never asked for, so
// detection fails closed toward ModeGeneral.
var (
	exactCountCues = []string{"exactly 3", "exactly three"}

	// Exact combined phrases only. Matching "title" and "speaker" anywhere
	// in the sentence misfires on questions that merely mention both words.
	titleSpeakerPhrases = []string{
		"provide the title and speaker",
		"provide title and speaker",
		"title and speaker",
		"title & speaker",
	}
)

// ResolveMode picks the response contract for a question. An explicit mode
// from the caller wins outright, including an explicit general directive,
// so programmatic callers that always pass a mode never get surprise flips.
func ResolveMode(question string, explicit *domain.Mode) domain.Mode {
	if explicit != nil {
		return *explicit
	}

	q := strings.ToLower(question)
	if containsAny(q, exactCountCues) && strings.Contains(q, "title") {
		return domain.ModeTitleList
	}
	if containsAny(q, titleSpeakerPhrases) {
		return domain.ModeTitleSpeaker
	}
	return domain.ModeGeneral
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
