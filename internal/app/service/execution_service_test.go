package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeclash/internal/common"
	"codeclash/internal/platform/judge"
)

func newOfflineExecutionService() *ExecutionService {
	// Unreachable judge: any request that gets past validation would fail.
	client := judge.NewClient("http://127.0.0.1:1", "key", "host", time.Second, false)
	return NewExecutionService(client)
}

func TestRunCodeRejectsUnsupportedLanguage(t *testing.T) {
	svc := newOfflineExecutionService()

	_, err := svc.RunCode(context.Background(), RunCodeRequest{Code: "puts 1", Language: "ruby"})
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestRunCodeValidatesInput(t *testing.T) {
	svc := newOfflineExecutionService()

	_, err := svc.RunCode(context.Background(), RunCodeRequest{Language: "python"})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
