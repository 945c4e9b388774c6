package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatHandler(t *testing.T, reply string, check func(r chatRequest)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(req)
		}

		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: reply}})
		json.NewEncoder(w).Encode(resp)
	}
}

func TestCompleteSendsPromptAndAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		chatHandler(t, "hello", func(req chatRequest) {
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "be brief", req.Messages[0].Content)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Nil(t, req.ResponseFormat)
		})(w, r)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "sk-test", "test-model", 0)

	got, err := client.Complete(context.Background(), "be brief", "hi", false)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestCompleteJSONMode(t *testing.T) {
	srv := httptest.NewServer(chatHandler(t, `{"issues":[]}`, func(req chatRequest) {
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "", "test-model", 256)

	got, err := client.Complete(context.Background(), "audit", "code", true)
	require.NoError(t, err)
	assert.Equal(t, `{"issues":[]}`, got)
}

func TestCompleteRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		chatHandler(t, "recovered", nil)(w, r)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "", "test-model", 0)

	got, err := client.Complete(context.Background(), "sys", "user", false)
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCompleteGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "", "test-model", 0)

	_, err := client.Complete(context.Background(), "sys", "user", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestParseIssues(t *testing.T) {
	response := `{"issues":[{"severity":"high","description":"eval on user input","suggestion":"parse it"}]}`

	issues, err := ParseIssues(response)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "high", issues[0].Severity)
	assert.Equal(t, "eval on user input", issues[0].Description)
}

func TestParseIssuesFenced(t *testing.T) {
	response := "```json\n{\"issues\":[{\"severity\":\"low\",\"description\":\"d\",\"suggestion\":\"s\"}]}\n```"

	issues, err := ParseIssues(response)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "low", issues[0].Severity)
}

func TestParseIssuesMalformed(t *testing.T) {
	_, err := ParseIssues("sorry, I cannot help with that")
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	for _, name := range []string{"security", "readability", "detail_designer", "overview_designer", "architect", "rationale"} {
		prompt, ok := Preset(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, prompt, name)
	}

	_, ok := Preset("nonexistent")
	assert.False(t, ok)

	assert.Contains(t, PresetNames(), "security")
}
