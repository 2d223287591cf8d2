package handler

import (
	"encoding/json"
	"net/http"

	"codeclash/internal/api/middleware"
	"codeclash/internal/app/service"
	"codeclash/internal/common"

	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	teamService *service.TeamService
	userService *service.UserService
}

func NewTeamHandler(ts *service.TeamService, us *service.UserService) *TeamHandler {
	return &TeamHandler{teamService: ts, userService: us}
}

func (h *TeamHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Post("/", h.createTeam)
	r.Post("/quick-create", h.quickCreateTeam)
	r.Post("/join", h.joinTeam)
	r.Get("/user/{userID}", h.getMyTeam)
	r.Get("/code/{teamCode}", h.getByCode)

	// Member routes address a team by join code, admin routes by id. chi
	// allows one wildcard name per path level, so both use {teamKey}.
	r.Patch("/{teamKey}/ready", h.setReady)
	r.Patch("/{teamKey}/start", h.startContest)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Get("/stats/summary", h.stats)
		admin.Get("/{teamKey}", h.getByID)
		admin.Patch("/{teamKey}", h.overrideStatus)
		admin.Delete("/{teamKey}", h.deleteTeam)
	})
}

// actor resolves the caller's identity for member rows. The display name
// and image come from the user directory.
func (h *TeamHandler) actor(r *http.Request) (service.TeamActor, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return service.TeamActor{}, false
	}
	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		return service.TeamActor{}, false
	}

	actor := service.TeamActor{UserID: userID}
	if user, err := h.userService.GetByEmail(r.Context(), email); err == nil {
		actor.UserName = user.UserName
		actor.UserImage = user.UserImage
	} else {
		actor.UserName = email
	}
	return actor, true
}

func (h *TeamHandler) createTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), actor, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) quickCreateTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.QuickCreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	team, err := h.teamService.QuickCreateTeam(r.Context(), actor, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) joinTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.JoinTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	team, err := h.teamService.JoinTeam(r.Context(), actor, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) getMyTeam(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	contestID := r.URL.Query().Get("contestId")
	if contestID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "contestId query parameter required")
		return
	}

	team, err := h.teamService.GetMyTeam(r.Context(), userID, contestID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) getByCode(w http.ResponseWriter, r *http.Request) {
	teamCode := chi.URLParam(r, "teamCode")

	team, err := h.teamService.GetByCode(r.Context(), teamCode)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) setReady(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	teamCode := chi.URLParam(r, "teamKey")

	var req service.SetReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	team, err := h.teamService.SetReady(r.Context(), actor, teamCode, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) startContest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	teamCode := chi.URLParam(r, "teamKey")

	team, err := h.teamService.StartContest(r.Context(), actor, teamCode)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) getByID(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamKey")

	team, err := h.teamService.GetByID(r.Context(), teamID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) overrideStatus(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamKey")

	var req service.OverrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.teamService.OverrideStatus(r.Context(), teamID, req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "team status updated"})
}

func (h *TeamHandler) deleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamKey")

	if err := h.teamService.DeleteTeam(r.Context(), teamID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "team deleted"})
}

func (h *TeamHandler) stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.teamService.Stats(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}
