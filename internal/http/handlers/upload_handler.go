package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadRequest is the JSON payload for POST /uploads.
type UploadRequest struct {
	FileType string `json:"fileType" binding:"required" example:"image/jpeg"`
}

// UploadResponse describes a granted upload slot. The client PUTs the image
// to UploadURL and then references PublicURL in a check-in.
type UploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey" example:"5b0c.../1739180000000-1f2e.jpg"`
	PublicURL string `json:"publicUrl"`
}

// CreateUpload godoc
// @ID          createUpload
// @Summary     Presigned photo upload
// @Description Accepts image/jpeg, image/jpg, image/png and image/webp. Counts against the daily upload quota.
// @Tags        Uploads
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.UploadRequest  true  "Upload request"
// @Success     200  {object}  handlers.UploadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unsupported file type"
// @Failure     429  {object}  handlers.ErrorResponse  "Daily quota reached"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage not configured"
// @Router      /uploads [post]
func (h *Handlers) CreateUpload(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "fileType required")
		return
	}
	up, err := h.uploads.CreateUploadURL(c.Request.Context(), u.ID, req.FileType)
	if err != nil {
		serviceError(c, err, ErrCodeUploadFailed)
		return
	}
	ok(c, http.StatusOK, UploadResponse{
		UploadURL: up.UploadURL,
		FileKey:   up.FileKey,
		PublicURL: up.PublicURL,
	})
}
