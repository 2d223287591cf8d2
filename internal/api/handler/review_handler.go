package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"codeclash/internal/api/middleware"
	"codeclash/internal/app/service"
	"codeclash/internal/common"

	"github.com/go-chi/chi/v5"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	userService   *service.UserService
}

func NewReviewHandler(rs *service.ReviewService, us *service.UserService) *ReviewHandler {
	return &ReviewHandler{reviewService: rs, userService: us}
}

func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Get("/problem/{problemID}", h.problemReviews)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/submit-review", h.submitReview)
		authed.Patch("/{reviewID}/helpful", h.markHelpful)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Patch("/{reviewID}/status", h.moderate)
	})
}

func (h *ReviewHandler) submitReview(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	name := email
	if user, err := h.userService.GetByEmail(r.Context(), email); err == nil {
		name = user.UserName
	}

	var req service.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	review, err := h.reviewService.SubmitReview(r.Context(), email, name, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) problemReviews(w http.ResponseWriter, r *http.Request) {
	problemID := chi.URLParam(r, "problemID")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	resp, err := h.reviewService.ProblemReviews(r.Context(), problemID, page, pageSize)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *ReviewHandler) markHelpful(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")

	review, err := h.reviewService.MarkHelpful(r.Context(), reviewID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) moderate(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")

	var req service.ModerateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.reviewService.Moderate(r.Context(), reviewID, req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "review status updated"})
}
