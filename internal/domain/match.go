package domain

// Match is one normalized retrieval hit: a single transcript chunk of a talk
// that survived the score threshold and metadata validation.
type Match struct {
	TalkID   string
	Title    string
	Speaker  string
	Topics   []string
	Evidence string
	Score    float64
}

// Candidate is the per-talk unit presented to the generation model. It carries
// the merged evidence of the talk's strongest chunks and the best chunk's
// score and metadata.
type Candidate struct {
	TalkID   string
	Title    string
	Speaker  string
	Topics   []string
	Evidence string
	Score    float64
}
