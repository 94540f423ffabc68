package usecase

import (
	"strings"

	"talk-qa/internal/domain"
)

// The index was populated by more than one ingestion job over time, so the
// talk identifier and evidence text appear under different metadata keys
// depending on record age. First key wins.
var (
	talkIDKeys   = []string{"talk_id", "id"}
	evidenceKeys = []string{"text", "chunk"}
)

// MatchFromHit normalizes one raw index hit into a Match. The second return
// value is false when the hit is unusable (missing identifier, title, or
// evidence after normalization) and must be dropped.
func MatchFromHit(hit domain.IndexHit) (domain.Match, bool) {
	m := domain.Match{
		TalkID:   metadataString(hit.Metadata, talkIDKeys...),
		Title:    metadataString(hit.Metadata, "title"),
		Speaker:  metadataString(hit.Metadata, "speaker"),
		Topics:   NormalizeTopics(hit.Metadata["topics"]),
		Evidence: metadataString(hit.Metadata, evidenceKeys...),
		Score:    hit.Score,
	}
	if m.TalkID == "" || m.Title == "" || m.Evidence == "" {
		return domain.Match{}, false
	}
	return m, true
}

// NormalizeTopics accepts a topics field that may arrive as an actual list or
// as a comma-separated string and returns an ordered set of trimmed,
// non-empty, deduplicated topic names.
func NormalizeTopics(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}

	seen := make(map[string]struct{}, len(parts))
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		topics = append(topics, p)
	}
	if len(topics) == 0 {
		return nil
	}
	return topics
}

func metadataString(md map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := md[key]; ok {
			if s, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}
