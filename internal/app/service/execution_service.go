package service

import (
	"context"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/platform/judge"
)

// ExecutionService fronts the remote judge for the run-code endpoint.
type ExecutionService struct {
	judge *judge.Client
}

func NewExecutionService(judgeClient *judge.Client) *ExecutionService {
	return &ExecutionService{judge: judgeClient}
}

type RunCodeRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language" validate:"required"`
	Input    string `json:"input"`
}

type RunCodeResponse struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Status        string `json:"status"`
	Accepted      bool   `json:"accepted"`
	Time          string `json:"time,omitempty"`
	Memory        int    `json:"memory,omitempty"`
	Mocked        bool   `json:"mocked,omitempty"`
}

func (s *ExecutionService) RunCode(ctx context.Context, req RunCodeRequest) (*RunCodeResponse, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}
	if !judge.SupportedLanguage(req.Language) {
		return nil, fmt.Errorf("unsupported language %q: %w", req.Language, common.ErrBadRequest)
	}

	result, err := s.judge.Run(ctx, judge.RunRequest{
		Language: req.Language,
		Code:     req.Code,
		Stdin:    req.Input,
	})
	if err != nil {
		return nil, err
	}
	return &RunCodeResponse{
		Stdout:        result.Stdout,
		Stderr:        result.Stderr,
		CompileOutput: result.CompileOutput,
		Status:        result.Status,
		Accepted:      result.Accepted(),
		Time:          result.Time,
		Memory:        result.Memory,
		Mocked:        result.Mocked,
	}, nil
}
