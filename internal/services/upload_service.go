// Package services – UploadService
//
// UploadService hands out presigned photo upload URLs under the daily upload
// quota. Object keys are namespaced by user: <userId>/<unixMillis>-<uuid>.<ext>.
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var fileTypeRE = regexp.MustCompile(`^image/(jpeg|jpg|png|webp)$`)

// Presigner issues upload URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PublicURL(key string) string
}

// Upload is a granted upload slot.
type Upload struct {
	UploadURL string
	FileKey   string
	PublicURL string
}

// UploadService implements POST /uploads.
type UploadService struct {
	Storage Presigner
	Quota   *QuotaService
	Now     func() time.Time
}

// CreateUploadURL validates fileType, consumes one upload unit and returns a
// presigned slot for userID. An invalid type does not consume quota.
func (s *UploadService) CreateUploadURL(ctx context.Context, userID, fileType string) (*Upload, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	fileType = strings.ToLower(strings.TrimSpace(fileType))
	m := fileTypeRE.FindStringSubmatch(fileType)
	if m == nil {
		return nil, ErrInvalidFileType
	}
	if s.Storage == nil {
		return nil, ErrStorageDisabled
	}
	if s.Quota != nil {
		if _, err := s.Quota.Consume(ctx, userID, ActionUpload); err != nil {
			return nil, err
		}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	key := fmt.Sprintf("%s/%d-%s.%s", userID, now().UnixMilli(), uuid.NewString(), m[1])

	u, err := s.Storage.PresignPut(ctx, key, fileType)
	if err != nil {
		return nil, err
	}
	return &Upload{UploadURL: u, FileKey: key, PublicURL: s.Storage.PublicURL(key)}, nil
}
