package handler

import (
	"encoding/json"
	"net/http"

	"codeclash/internal/api/middleware"
	"codeclash/internal/app/service"
	"codeclash/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
	userService       *service.UserService
}

func NewSubmissionHandler(ss *service.SubmissionService, us *service.UserService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, userService: us}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.createSubmission)
	r.Get("/{email}", h.listByEmail)
}

func (h *SubmissionHandler) identity(r *http.Request) (email, name string, ok bool) {
	email, ok = middleware.GetEmailFromContext(r.Context())
	if !ok {
		return "", "", false
	}
	name = email
	if user, err := h.userService.GetByEmail(r.Context(), email); err == nil {
		name = user.UserName
	}
	return email, name, true
}

func (h *SubmissionHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	email, name, ok := h.identity(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	submission, err := h.submissionService.CreateSubmission(r.Context(), email, name, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, submission)
}

func (h *SubmissionHandler) listByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	submissions, err := h.submissionService.ListByEmail(r.Context(), email)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

// ContestSubmissionHandler serves the contest-scoped submission routes.
type ContestSubmissionHandler struct {
	submissionService *service.SubmissionService
	userService       *service.UserService
}

func NewContestSubmissionHandler(ss *service.SubmissionService, us *service.UserService) *ContestSubmissionHandler {
	return &ContestSubmissionHandler{submissionService: ss, userService: us}
}

func (h *ContestSubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.createContestSubmission)
	})
	r.Get("/leaderboard/{contestID}", h.leaderboard)
}

func (h *ContestSubmissionHandler) createContestSubmission(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	name := email
	if user, err := h.userService.GetByEmail(r.Context(), email); err == nil {
		name = user.UserName
	}

	var req service.CreateContestSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	submission, err := h.submissionService.CreateContestSubmission(r.Context(), email, name, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, submission)
}

func (h *ContestSubmissionHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	contestID := chi.URLParam(r, "contestID")

	entries, err := h.submissionService.ContestLeaderboard(r.Context(), contestID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
