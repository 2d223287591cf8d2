package handler

import (
	"encoding/json"
	"net/http"

	"codeclash/internal/app/service"
	"codeclash/internal/common"

	"github.com/go-chi/chi/v5"
)

type ExecutionHandler struct {
	executionService *service.ExecutionService
}

func NewExecutionHandler(es *service.ExecutionService) *ExecutionHandler {
	return &ExecutionHandler{executionService: es}
}

func (h *ExecutionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.runCode)
}

func (h *ExecutionHandler) runCode(w http.ResponseWriter, r *http.Request) {
	var req service.RunCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.executionService.RunCode(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
