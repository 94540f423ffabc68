package usecase

import (
	"sort"
	"strings"

	"talk-qa/internal/domain"
)

// DefaultMaxCandidates caps the candidate set handed to the prompt builder.
const DefaultMaxCandidates = 8

// snippetsPerTalk bounds how much evidence one talk contributes. Two snippets
// keeps the strongest supporting passages while bounding prompt size no
// matter how many chunks of a single talk matched.
const snippetsPerTalk = 2

// snippetSeparator visually divides concatenated snippets so the model can
// tell it is reading more than one passage.
var snippetSeparator = "\n" + strings.Repeat("-", 40) + "\n"

// AggregateCandidates merges the matches of each talk into one candidate
// carrying the talk's top snippets, then ranks all candidates by score and
// truncates to maxCandidates. Output order is descending by score with input
// order breaking ties.
func AggregateCandidates(matches []domain.Match, maxCandidates int) []domain.Candidate {
	if len(matches) == 0 || maxCandidates <= 0 {
		return nil
	}

	order := make([]string, 0, len(matches))
	groups := make(map[string][]domain.Match, len(matches))
	for _, m := range matches {
		if _, ok := groups[m.TalkID]; !ok {
			order = append(order, m.TalkID)
		}
		groups[m.TalkID] = append(groups[m.TalkID], m)
	}

	candidates := make([]domain.Candidate, 0, len(order))
	for _, talkID := range order {
		group := groups[talkID]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Score > group[j].Score
		})

		limit := snippetsPerTalk
		if len(group) < limit {
			limit = len(group)
		}
		snippets := make([]string, 0, limit)
		for _, m := range group[:limit] {
			snippets = append(snippets, m.Evidence)
		}

		best := group[0]
		candidates = append(candidates, domain.Candidate{
			TalkID:   best.TalkID,
			Title:    best.Title,
			Speaker:  best.Speaker,
			Topics:   best.Topics,
			Evidence: strings.Join(snippets, snippetSeparator),
			Score:    best.Score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}
