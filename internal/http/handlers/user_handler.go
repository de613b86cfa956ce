// User, goal and onboarding HTTP handlers.
//
//   - GET  /me
//   - GET  /goals
//   - POST /onboarding
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/services"
)

// OnboardingRequest is the JSON payload for POST /onboarding.
type OnboardingRequest struct {
	// GoalID selects one of the goals returned by GET /goals.
	GoalID string `json:"goalId" binding:"required" example:"7f7c3c4e-1d7b-4c55-9d8e-2f1b6a0c9e11"`
	// Timezone is an IANA zone name; empty means UTC.
	Timezone string `json:"timezone" example:"Europe/London"`
	// Preferences are normalized and validated server-side.
	Preferences domain.Preferences `json:"preferences"`
}

// ListGoalsResponse wraps the goal catalogue.
type ListGoalsResponse struct {
	Goals []domain.Goal `json:"goals"`
}

// Me godoc
// @ID          getMe
// @Summary     Current user
// @Description Returns the caller with goal, preferences and subscription status.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /me [get]
func (h *Handlers) Me(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	fresh, err := h.users.Get(c.Request.Context(), u.ID)
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, fresh)
}

// ListGoals godoc
// @ID          listGoals
// @Summary     List goals
// @Description Returns the goals a user can pick during onboarding, by name.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.ListGoalsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /goals [get]
func (h *Handlers) ListGoals(c *gin.Context) {
	goals, err := h.users.ListGoals(c.Request.Context())
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if goals == nil {
		goals = []domain.Goal{}
	}
	ok(c, http.StatusOK, ListGoalsResponse{Goals: goals})
}

// Onboard godoc
// @ID          onboard
// @Summary     Complete onboarding
// @Description Stores the selected goal, timezone and coaching preferences.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.OnboardingRequest  true  "Onboarding payload"
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid goal, timezone or preferences"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /onboarding [post]
func (h *Handlers) Onboard(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.GoalID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "goalId required")
		return
	}
	out, err := h.users.Onboard(c.Request.Context(), u.ID, services.OnboardingInput{
		GoalID:      strings.TrimSpace(req.GoalID),
		Timezone:    strings.TrimSpace(req.Timezone),
		Preferences: req.Preferences,
	})
	if err != nil {
		serviceError(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, out)
}
