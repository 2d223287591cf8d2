// Package judge talks to the Judge0 execution API. Code and stdin travel
// base64-encoded and submissions are created with wait=true, so a single
// round trip returns the verdict.
package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"codeclash/internal/common"

	log "github.com/sirupsen/logrus"
)

// languageIDs maps the platform's language tags to Judge0 language ids.
var languageIDs = map[string]int{
	"javascript": 63,
	"python":     71,
	"java":       62,
	"c":          50,
	"cpp":        54,
}

type RunRequest struct {
	Language string
	Code     string
	Stdin    string
}

type RunResult struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Message       string `json:"message"`
	StatusID      int    `json:"status_id"`
	Status        string `json:"status"`
	Time          string `json:"time"`
	Memory        int    `json:"memory"`
	Mocked        bool   `json:"mocked,omitempty"`
}

// Accepted reports whether Judge0 judged the run as passing. Status id 3 is
// "Accepted" in the Judge0 status table.
func (r *RunResult) Accepted() bool {
	return r.StatusID == 3
}

type Client struct {
	baseURL      string
	apiKey       string
	apiHost      string
	timeout      time.Duration
	mockFallback bool
	httpClient   *http.Client
}

func NewClient(baseURL, apiKey, apiHost string, timeout time.Duration, mockFallback bool) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		apiHost:      apiHost,
		timeout:      timeout,
		mockFallback: mockFallback,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// SupportedLanguage reports whether the tag has a Judge0 mapping.
func SupportedLanguage(language string) bool {
	_, ok := languageIDs[language]
	return ok
}

type submissionPayload struct {
	LanguageID   int    `json:"language_id"`
	SourceCode   string `json:"source_code"`
	Stdin        string `json:"stdin,omitempty"`
	Base64Encode bool   `json:"base64_encoded"`
}

type submissionResponse struct {
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
	Time          *string `json:"time"`
	Memory        *int    `json:"memory"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// Run executes code synchronously. Unknown languages fail before any network
// call. Upstream failures fall back to a mock verdict only when the client
// was configured to allow it.
func (c *Client) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	languageID, ok := languageIDs[req.Language]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q: %w", req.Language, common.ErrBadRequest)
	}

	result, err := c.submit(ctx, languageID, req)
	if err != nil {
		if c.mockFallback && !errors.Is(err, common.ErrRequestTimeout) {
			log.WithError(err).Warn("judge0 unavailable, serving mock verdict")
			return c.mockResult(req), nil
		}
		return nil, err
	}
	return result, nil
}

func (c *Client) submit(ctx context.Context, languageID int, req RunRequest) (*RunResult, error) {
	payload := submissionPayload{
		LanguageID:   languageID,
		SourceCode:   base64.StdEncoding.EncodeToString([]byte(req.Code)),
		Base64Encode: true,
	}
	if req.Stdin != "" {
		payload.Stdin = base64.StdEncoding.EncodeToString([]byte(req.Stdin))
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("judge.Client.submit marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/submissions?base64_encoded=true&wait=true"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("judge.Client.submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-RapidAPI-Key", c.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("judge0 submission: %w", common.ErrRequestTimeout)
		}
		return nil, fmt.Errorf("judge0 submission: %v: %w", err, common.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("judge0 quota exhausted: %w", common.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("judge0 returned %d: %s: %w", resp.StatusCode, raw, common.ErrUpstream)
	}

	var sub submissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("judge.Client.submit decode: %w", err)
	}

	result := &RunResult{
		Stdout:        decodeField(sub.Stdout),
		Stderr:        decodeField(sub.Stderr),
		CompileOutput: decodeField(sub.CompileOutput),
		Message:       decodeField(sub.Message),
		StatusID:      sub.Status.ID,
		Status:        sub.Status.Description,
	}
	if sub.Time != nil {
		result.Time = *sub.Time
	}
	if sub.Memory != nil {
		result.Memory = *sub.Memory
	}
	return result, nil
}

// decodeField base64-decodes an optional response field, tolerating plain
// text from Judge0 deployments that ignore base64_encoded on output.
func decodeField(field *string) string {
	if field == nil {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(*field)
	if err != nil {
		return *field
	}
	return string(decoded)
}

func (c *Client) mockResult(req RunRequest) *RunResult {
	return &RunResult{
		Stdout:   fmt.Sprintf("mock execution for %s submission", req.Language),
		StatusID: 3,
		Status:   "Accepted",
		Mocked:   true,
	}
}
