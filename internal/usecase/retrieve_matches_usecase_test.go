package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"talk-qa/internal/domain"
	"talk-qa/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEncoder struct {
	embeddings [][]float32
	err        error
	gotTexts   []string
}

func (s *stubEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	s.gotTexts = texts
	if s.err != nil {
		return nil, s.err
	}
	return s.embeddings, nil
}

func (s *stubEncoder) Version() string { return "stub-encoder" }

type stubIndex struct {
	hits    []domain.IndexHit
	err     error
	gotTopK int
}

func (s *stubIndex) Query(_ context.Context, _ []float32, topK int) ([]domain.IndexHit, error) {
	s.gotTopK = topK
	if s.err != nil {
		return nil, s.err
	}
	return s.hits, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func hit(id, talkID, title, text string, score float64) domain.IndexHit {
	return domain.IndexHit{
		ID:    id,
		Score: score,
		Metadata: map[string]any{
			"talk_id": talkID,
			"title":   title,
			"text":    text,
		},
	}
}

func TestRetrieveMatches_FiltersAndSorts(t *testing.T) {
	encoder := &stubEncoder{embeddings: [][]float32{{0.1, 0.2}}}
	index := &stubIndex{hits: []domain.IndexHit{
		hit("c1", "talk-1", "Talk One", "text one", 0.3),
		hit("c2", "talk-2", "Talk Two", "text two", 0.05), // below threshold
		hit("c3", "talk-3", "Talk Three", "text three", 0.9),
		hit("c4", "talk-4", "Talk Four", "text four", 0.3), // ties with c1, input order kept
	}}

	uc := usecase.NewRetrieveMatchesUsecase(encoder, index, 25, 0.12, testLogger())
	out, err := uc.Execute(context.Background(), usecase.RetrieveMatchesInput{Question: "what is fear?"})
	require.NoError(t, err)

	require.Len(t, out.Matches, 3)
	assert.Equal(t, "talk-3", out.Matches[0].TalkID)
	assert.Equal(t, "talk-1", out.Matches[1].TalkID)
	assert.Equal(t, "talk-4", out.Matches[2].TalkID)
	for i := 1; i < len(out.Matches); i++ {
		assert.GreaterOrEqual(t, out.Matches[i-1].Score, out.Matches[i].Score)
	}
	for _, m := range out.Matches {
		assert.GreaterOrEqual(t, m.Score, 0.12)
	}

	assert.Equal(t, []string{"what is fear?"}, encoder.gotTexts)
	assert.Equal(t, 25, index.gotTopK)
}

func TestRetrieveMatches_DropsMalformedRecords(t *testing.T) {
	encoder := &stubEncoder{embeddings: [][]float32{{0.1}}}
	index := &stubIndex{hits: []domain.IndexHit{
		hit("c1", "talk-1", "Talk One", "text one", 0.8),
		{ID: "c2", Score: 0.7, Metadata: map[string]any{"title": "No ID", "text": "text"}},
	}}

	uc := usecase.NewRetrieveMatchesUsecase(encoder, index, 10, 0.12, testLogger())
	out, err := uc.Execute(context.Background(), usecase.RetrieveMatchesInput{Question: "q"})
	require.NoError(t, err)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, "talk-1", out.Matches[0].TalkID)
}

func TestRetrieveMatches_EmptyQuestion(t *testing.T) {
	uc := usecase.NewRetrieveMatchesUsecase(&stubEncoder{}, &stubIndex{}, 10, 0.12, testLogger())
	_, err := uc.Execute(context.Background(), usecase.RetrieveMatchesInput{Question: "   "})
	assert.Error(t, err)
}

func TestRetrieveMatches_EncoderErrorPropagates(t *testing.T) {
	encoder := &stubEncoder{err: errors.New("embedding service down")}
	uc := usecase.NewRetrieveMatchesUsecase(encoder, &stubIndex{}, 10, 0.12, testLogger())

	_, err := uc.Execute(context.Background(), usecase.RetrieveMatchesInput{Question: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode question")
}

func TestRetrieveMatches_IndexErrorPropagates(t *testing.T) {
	encoder := &stubEncoder{embeddings: [][]float32{{0.1}}}
	index := &stubIndex{err: errors.New("index unavailable")}
	uc := usecase.NewRetrieveMatchesUsecase(encoder, index, 10, 0.12, testLogger())

	_, err := uc.Execute(context.Background(), usecase.RetrieveMatchesInput{Question: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query vector index")
}
