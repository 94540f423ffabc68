package domain

// Mode selects the response contract for one answer request. The set is
// closed: every request resolves to exactly one of these before the prompt is
// built, and the guardrail dispatches on the same value.
type Mode int

const (
	// ModeGeneral is free-form grounded prose. No post-hoc validation.
	ModeGeneral Mode = iota
	// ModeTitleList requires exactly three candidate titles, one per line.
	ModeTitleList
	// ModeTitleSpeaker requires a title and speaker copied from one candidate.
	ModeTitleSpeaker
)

var modeNames = map[Mode]string{
	ModeGeneral:      "general",
	ModeTitleList:    "title_list",
	ModeTitleSpeaker: "title_speaker",
}

var modesByTag = map[string]Mode{
	"general":       ModeGeneral,
	"title_list":    ModeTitleList,
	"title_speaker": ModeTitleSpeaker,
}

// ParseMode maps a wire tag to its Mode. Unknown tags are the caller's error
// to report, not something to coerce.
func ParseMode(tag string) (Mode, bool) {
	m, ok := modesByTag[tag]
	return m, ok
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}
