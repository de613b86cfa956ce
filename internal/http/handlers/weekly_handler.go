package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/utils"
)

// WeeklySummaryRequest is the JSON payload for POST /weekly-summaries.
type WeeklySummaryRequest struct {
	// ISO week, YYYY-Www.
	WeekKey string `json:"weekKey" binding:"required" example:"2025-W06"`
}

// ListWeeklySummariesResponse wraps stored summaries, newest week first.
type ListWeeklySummariesResponse struct {
	Summaries []domain.WeeklySummary `json:"summaries"`
}

// GenerateWeeklySummary godoc
// @ID          generateWeeklySummary
// @Summary     Weekly summary
// @Description Generates the summary of an ISO week once and returns the stored one afterwards. Free users receive an upgrade message that is not stored.
// @Tags        Weekly
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.WeeklySummaryRequest  true  "Week to summarize"
// @Success     201  {object}  domain.WeeklySummary
// @Success     200  {object}  domain.WeeklySummary  "Stored or upgrade summary"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid week key"
// @Failure     404  {object}  handlers.ErrorResponse  "No check-ins that week"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /weekly-summaries [post]
func (h *Handlers) GenerateWeeklySummary(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	var req WeeklySummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "weekKey required")
		return
	}
	ws, created, err := h.weekly.Generate(c.Request.Context(), u, strings.TrimSpace(req.WeekKey))
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	okOrCreated(c, created, ws)
}

// ListWeeklySummaries godoc
// @ID          listWeeklySummaries
// @Summary     List weekly summaries
// @Tags        Weekly
// @Produce     json
// @Security    BearerAuth
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       limit          query   int     false  "Maximum items"  minimum(1) maximum(52) default(12)
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     200  {object}  handlers.ListWeeklySummariesResponse
// @Success     304  {string}  string  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /weekly-summaries [get]
func (h *Handlers) ListWeeklySummaries(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	ctx := c.Request.Context()
	limit := utils.AtoiDefault(c.Query("limit"), 12)
	if limit <= 0 {
		limit = 12
	}
	if limit > 52 {
		limit = 52
	}

	if count, last, err := h.weekly.Stats(ctx, u.ID); err == nil && listETag(c, "weekly", u.ID, count, last, limit) {
		return
	}

	items, err := h.weekly.List(ctx, u.ID, limit)
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if items == nil {
		items = []domain.WeeklySummary{}
	}
	ok(c, http.StatusOK, ListWeeklySummariesResponse{Summaries: items})
}
