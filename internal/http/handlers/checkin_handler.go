// Meal check-in HTTP handlers.
//
//   - POST   /checkins        (create, Idempotency-Key aware)
//   - GET    /checkins        (list within the tier's history window, ETag support)
//   - GET    /checkins/{id}
//   - PATCH  /checkins/{id}   (notes and answers only)
//   - DELETE /checkins/{id}
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/http/middleware"
	"github.com/tbourn/go-habit-backend/internal/services"
	"github.com/tbourn/go-habit-backend/internal/utils"
)

// CreateCheckInRequest is the JSON payload for POST /checkins.
type CreateCheckInRequest struct {
	// Local calendar date of the meal, YYYY-MM-DD.
	Date string `json:"date" binding:"required" example:"2025-02-10"`
	// breakfast, lunch, dinner, snack or full-day.
	MealType domain.MealType `json:"mealType" binding:"required" example:"lunch"`
	Notes    *string         `json:"notes,omitempty" example:"Chicken salad, sparkling water"`
	// Public URLs returned by POST /uploads; at most five.
	Photos  []string               `json:"photos,omitempty"`
	Answers *domain.CheckInAnswers `json:"answers,omitempty"`
}

// UpdateCheckInRequest is the JSON payload for PATCH /checkins/{id}.
// Omitted fields are left unchanged; blank notes clear them.
type UpdateCheckInRequest struct {
	Notes   *string                `json:"notes,omitempty"`
	Answers *domain.CheckInAnswers `json:"answers,omitempty"`
}

// ListCheckInsResponse wraps a check-in list.
type ListCheckInsResponse struct {
	CheckIns []domain.CheckIn `json:"checkIns"`
}

// CreateCheckIn godoc
// @ID          createCheckIn
// @Summary     Log a meal
// @Description Creates a check-in under the daily quota. A repeated Idempotency-Key returns the original check-in with 200.
// @Tags        CheckIns
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string                            false  "Client key for safe retries"
// @Param       body             body    handlers.CreateCheckInRequest  true   "Check-in payload"
// @Success     201  {object}  domain.CheckIn
// @Success     200  {object}  domain.CheckIn  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     429  {object}  handlers.ErrorResponse  "Daily quota reached"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /checkins [post]
func (h *Handlers) CreateCheckIn(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	ctx := c.Request.Context()

	if id, replay := middleware.ReplayResource(c); replay {
		ci, err := h.checkIns.Get(ctx, u.ID, id)
		if err == nil {
			ok(c, http.StatusOK, ci)
			return
		}
		// The original check-in is gone; treat the request as new.
		middleware.LoggerFrom(c).Warn().Err(err).Str("checkin_id", id).Msg("idempotent replay target missing")
	}

	var req CreateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ci, err := h.checkIns.Create(ctx, u, services.CheckInInput{
		Date:      strings.TrimSpace(req.Date),
		MealType:  req.MealType,
		Notes:     req.Notes,
		PhotoURLs: req.Photos,
		Answers:   req.Answers,
	})
	if err != nil {
		serviceError(c, err, ErrCodeCreateFailed)
		return
	}

	if key, _ := middleware.GetIdempotencyKey(c); key != "" && h.idem != nil {
		if err := h.idem.Remember(ctx, u.ID, middleware.IdempotencyScope(c), key, ci.ID, http.StatusCreated); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
		}
	}
	ok(c, http.StatusCreated, ci)
}

// ListCheckIns godoc
// @ID          listCheckIns
// @Summary     List check-ins
// @Description Newest first, limited to the last 3 days (free) or 30 days (Pro). Supports weak ETag via If-None-Match.
// @Tags        CheckIns
// @Produce     json
// @Security    BearerAuth
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       limit          query   int     false  "Maximum items"  minimum(1) maximum(30) default(30)
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     200  {object}  handlers.ListCheckInsResponse
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /checkins [get]
func (h *Handlers) ListCheckIns(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	ctx := c.Request.Context()
	limit := utils.AtoiDefault(c.Query("limit"), 30)
	if limit <= 0 || limit > 30 {
		limit = 30
	}

	if count, last, err := h.checkIns.Stats(ctx, u); err == nil && listETag(c, "checkins", u.ID, count, last, limit) {
		return
	}

	items, err := h.checkIns.List(ctx, u, limit)
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if items == nil {
		items = []domain.CheckIn{}
	}
	ok(c, http.StatusOK, ListCheckInsResponse{CheckIns: items})
}

// GetCheckIn godoc
// @ID          getCheckIn
// @Summary     Get a check-in
// @Tags        CheckIns
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Check-in ID"
// @Success     200  {object}  domain.CheckIn
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /checkins/{id} [get]
func (h *Handlers) GetCheckIn(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	ci, err := h.checkIns.Get(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, ci)
}

// UpdateCheckIn godoc
// @ID          updateCheckIn
// @Summary     Edit a check-in
// @Description Only notes and answers can change after creation.
// @Tags        CheckIns
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                           true  "Check-in ID"
// @Param       body  body  handlers.UpdateCheckInRequest  true  "Fields to change"
// @Success     200  {object}  domain.CheckIn
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /checkins/{id} [patch]
func (h *Handlers) UpdateCheckIn(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	var req UpdateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ci, err := h.checkIns.Update(c.Request.Context(), u.ID, c.Param("id"), services.CheckInUpdate{
		Notes:   req.Notes,
		Answers: req.Answers,
	})
	if err != nil {
		serviceError(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, ci)
}

// DeleteCheckIn godoc
// @ID          deleteCheckIn
// @Summary     Delete a check-in
// @Description Removes the check-in with its photos, answers and AI result.
// @Tags        CheckIns
// @Security    BearerAuth
// @Param       id  path  string  true  "Check-in ID"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /checkins/{id} [delete]
func (h *Handlers) DeleteCheckIn(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	if err := h.checkIns.Delete(c.Request.Context(), u.ID, c.Param("id")); err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}
