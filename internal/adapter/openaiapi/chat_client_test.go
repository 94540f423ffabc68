package openaiapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"talk-qa/internal/adapter/openaiapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatClient_Generate(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  the answer  \n"}}]}`))
	}))
	defer server.Close()

	client, err := openaiapi.NewChatClient(server.URL, "test-key", "gpt-4o-mini", server.Client(), testLogger())
	require.NoError(t, err)

	answer, err := client.Generate(context.Background(), "system text", "user text")
	require.NoError(t, err)

	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	assert.Equal(t, 0.0, gotBody.Temperature)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "system text", gotBody.Messages[0].Content)
	assert.Equal(t, "user", gotBody.Messages[1].Role)
	assert.Equal(t, "user text", gotBody.Messages[1].Content)

	assert.Equal(t, "the answer", answer, "completion text must be trimmed")
}

func TestChatClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := openaiapi.NewChatClient(server.URL, "test-key", "m", server.Client(), testLogger())
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestChatClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := openaiapi.NewChatClient(server.URL, "test-key", "m", server.Client(), testLogger())
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNewChatClient_RequiresAPIKey(t *testing.T) {
	_, err := openaiapi.NewChatClient("http://localhost", "", "m", http.DefaultClient, testLogger())
	assert.Error(t, err)
}
