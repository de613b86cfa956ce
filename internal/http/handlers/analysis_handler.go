package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-habit-backend/internal/domain"
)

// AnalyzeRequest is the JSON payload for POST /analyze.
type AnalyzeRequest struct {
	CheckInID string `json:"checkInId" binding:"required" example:"0b1d3c8a-6a55-4f5e-9d1e-5a3f7c2b9e10"`
}

// AnalyzeResponse is the stored AI result plus its derived score and badge.
type AnalyzeResponse struct {
	AIResult     *domain.AIResult `json:"aiResult"`
	OverallScore int              `json:"overallScore" example:"72"`
	Badge        string           `json:"badge" example:"Good"`
	// Created is false when a stored result was returned.
	Created bool `json:"created"`
}

// Analyze godoc
// @ID          analyzeCheckIn
// @Summary     Analyze a check-in
// @Description Runs safety screening, prompt assembly and the validated completion for one check-in. A stored result is returned as-is with 200 and does not count against the quota.
// @Tags        Analysis
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.AnalyzeRequest  true  "Check-in to analyze"
// @Success     201  {object}  handlers.AnalyzeResponse
// @Success     200  {object}  handlers.AnalyzeResponse  "Already analyzed"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Check-in not found"
// @Failure     429  {object}  handlers.ErrorResponse  "Daily quota reached"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /analyze [post]
func (h *Handlers) Analyze(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CheckInID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "checkInId required")
		return
	}
	a, err := h.analysis.Analyze(c.Request.Context(), u, strings.TrimSpace(req.CheckInID))
	if err != nil {
		serviceError(c, err, ErrCodeAnalysisFailed)
		return
	}
	okOrCreated(c, a.Created, AnalyzeResponse{
		AIResult:     a.Result,
		OverallScore: a.OverallScore,
		Badge:        a.Badge,
		Created:      a.Created,
	})
}
