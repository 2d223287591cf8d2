package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"codeclash/internal/api/middleware"
	"codeclash/internal/app/service"
	"codeclash/internal/common"

	"github.com/go-chi/chi/v5"
)

type ParticipantHandler struct {
	participantService *service.ParticipantService
	userService        *service.UserService
}

func NewParticipantHandler(ps *service.ParticipantService, us *service.UserService) *ParticipantHandler {
	return &ParticipantHandler{participantService: ps, userService: us}
}

func (h *ParticipantHandler) RegisterRoutes(r chi.Router) {
	r.Get("/counts", h.counts)
	r.Get("/contest/{contestID}", h.listByContest)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.joinContest)
	})
}

func (h *ParticipantHandler) joinContest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	name := email
	if user, err := h.userService.GetByEmail(r.Context(), email); err == nil {
		name = user.UserName
	}

	var req service.JoinContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	participant, err := h.participantService.JoinContest(r.Context(), userID, name, email, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, participant)
}

func (h *ParticipantHandler) listByContest(w http.ResponseWriter, r *http.Request) {
	contestID := chi.URLParam(r, "contestID")

	participants, err := h.participantService.ListByContest(r.Context(), contestID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, participants)
}

// counts accepts an optional comma-separated contestIds filter.
func (h *ParticipantHandler) counts(w http.ResponseWriter, r *http.Request) {
	var contestIDs []string
	if raw := r.URL.Query().Get("contestIds"); raw != "" {
		contestIDs = strings.Split(raw, ",")
	}

	counts, err := h.participantService.Counts(r.Context(), contestIDs)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, counts)
}
