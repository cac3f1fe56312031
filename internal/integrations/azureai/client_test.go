package azureai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	questionsdomain "book-club-go/internal/domain/questions"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [
    {
      "index": 0,
      "finish_reason": "stop",
      "message": {"role": "assistant", "content": "First?\nSecond?"}
    }
  ]
}`

func TestCompleteSendsDeploymentRequest(t *testing.T) {
	var gotPath, gotVersion, gotKey string
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotVersion = r.URL.Query().Get("api-version")
		gotKey = r.Header.Get("Api-Key")
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer server.Close()

	client := New(Config{Endpoint: server.URL, APIKey: "secret", Deployment: "questions", MaxTokens: 200})
	text, err := client.Complete(context.Background(), []questionsdomain.Message{
		{Role: questionsdomain.RoleSystem, Content: "be brief"},
		{Role: questionsdomain.RoleUser, Content: "ask"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if text != "First?\nSecond?" {
		t.Fatalf("unexpected completion %q", text)
	}
	if gotPath != "/openai/deployments/questions/chat/completions" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotVersion != defaultAPIVersion || gotKey != "secret" {
		t.Fatalf("unexpected version %q key %q", gotVersion, gotKey)
	}
	messages, ok := payload["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %v", payload["messages"])
	}
	if payload["max_tokens"] != float64(200) {
		t.Fatalf("expected max_tokens 200, got %v", payload["max_tokens"])
	}
}

func TestCompleteWithoutChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer server.Close()

	client := New(Config{Endpoint: server.URL, APIKey: "k", Deployment: "d"})
	if _, err := client.Complete(context.Background(), nil); err != errNoChoices {
		t.Fatalf("expected errNoChoices, got %v", err)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"nope"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(Config{Endpoint: server.URL, APIKey: "k", Deployment: "d"})
	if _, err := client.Complete(context.Background(), nil); err == nil {
		t.Fatalf("expected error for upstream failure")
	}
}
