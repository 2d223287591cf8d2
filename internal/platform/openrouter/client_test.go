package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeclash/internal/common"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("test-key", "test-model", 5*time.Second)
	c.baseURL = serverURL
	return c
}

func TestCompleteReturnsAssistantReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "test-model" {
			t.Errorf("model = %v", req["model"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "use a hash map"}},
			},
		})
	}))
	defer server.Close()

	reply, err := newTestClient(server.URL).Complete(context.Background(), []Message{
		{Role: "user", Content: "two sum hint?"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "use a hash map" {
		t.Errorf("reply = %q", reply)
	}
}

func TestCompleteMapsUpstreamRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []Message{{Role: "user", Content: "q"}})
	if !errors.Is(err, common.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestCompleteEmptyChoicesIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []Message{{Role: "user", Content: "q"}})
	if !errors.Is(err, common.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestCompleteSurfacesAPIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "model overloaded"},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []Message{{Role: "user", Content: "q"}})
	if !errors.Is(err, common.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
