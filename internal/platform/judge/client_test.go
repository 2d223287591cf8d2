package judge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeclash/internal/common"
)

func TestRunRejectsUnsupportedLanguageBeforeRemoteCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "host", 5*time.Second, false)
	_, err := client.Run(context.Background(), RunRequest{Language: "ruby", Code: "puts 1"})
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	if called {
		t.Error("remote judge was called for an unsupported language")
	}
}

func TestRunDecodesBase64Verdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-RapidAPI-Key"); got != "key" {
			t.Errorf("missing rapidapi key header, got %q", got)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["language_id"].(float64) != 71 {
			t.Errorf("python should map to 71, got %v", payload["language_id"])
		}

		stdout := base64.StdEncoding.EncodeToString([]byte("hello\n"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"stdout": stdout,
			"status": map[string]interface{}{"id": 3, "description": "Accepted"},
			"time":   "0.02",
			"memory": 3456,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "host", 5*time.Second, false)
	result, err := client.Run(context.Background(), RunRequest{Language: "python", Code: "print('hello')"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stdout != "hello\n" {
		t.Errorf("stdout = %q, want %q", result.Stdout, "hello\n")
	}
	if !result.Accepted() {
		t.Error("status id 3 should be accepted")
	}
	if result.Mocked {
		t.Error("live verdict should not be marked mocked")
	}
}

func TestRunMapsQuotaExhaustionToRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "host", 5*time.Second, false)
	_, err := client.Run(context.Background(), RunRequest{Language: "cpp", Code: "int main(){}"})
	if !errors.Is(err, common.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRunFallsBackToMockWhenEnabled(t *testing.T) {
	// Unreachable host: the connection is refused immediately.
	client := NewClient("http://127.0.0.1:1", "key", "host", 2*time.Second, true)
	result, err := client.Run(context.Background(), RunRequest{Language: "javascript", Code: "1+1"})
	if err != nil {
		t.Fatalf("expected mock fallback, got error %v", err)
	}
	if !result.Mocked {
		t.Error("fallback verdict should be marked mocked")
	}
}

func TestSupportedLanguage(t *testing.T) {
	for _, lang := range []string{"javascript", "python", "java", "c", "cpp"} {
		if !SupportedLanguage(lang) {
			t.Errorf("%s should be supported", lang)
		}
	}
	if SupportedLanguage("ruby") {
		t.Error("ruby should not be supported")
	}
}
