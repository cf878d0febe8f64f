// Package file implements upload-URL issuance and object deletion.
package file

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/filegate/service/internal/apperr"
	"github.com/filegate/service/internal/auth"
	"github.com/filegate/service/internal/keys"
	"github.com/filegate/service/internal/storage"
)

// UploadURLRequest is the client payload for upload-URL issuance.
type UploadURLRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Folder      string `json:"folder,omitempty"`
}

// UploadURLResult is returned to the client. The client PUTs the file bytes
// to UploadURL directly; this service never sees them.
type UploadURLResult struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	ExpiresIn int    `json:"expiresIn"`
}

// Service contains the business logic for file operations. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	store     storage.Storage
	buckets   *storage.Provisioner
	allowed   map[string]struct{}
	urlExpiry time.Duration
	now       func() time.Time
}

// NewService creates a file Service. allowedTypes is the content-type
// allowlist; urlExpirySeconds bounds the life of issued upload URLs.
func NewService(store storage.Storage, buckets *storage.Provisioner, allowedTypes []string, urlExpirySeconds int) *Service {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &Service{
		store:     store,
		buckets:   buckets,
		allowed:   allowed,
		urlExpiry: time.Duration(urlExpirySeconds) * time.Second,
		now:       time.Now,
	}
}

// CreateUploadURL validates the request, derives a collision-resistant object
// key owned by the caller, provisions the caller's app bucket, and returns a
// time-limited presigned PUT URL scoped to that key and content type.
func (s *Service) CreateUploadURL(ctx context.Context, req UploadURLRequest, id *auth.Identity) (*UploadURLResult, error) {
	if strings.TrimSpace(req.FileName) == "" {
		return nil, apperr.BadRequest("fileName is required")
	}
	if strings.TrimSpace(req.ContentType) == "" {
		return nil, apperr.BadRequest("contentType is required")
	}
	if _, ok := s.allowed[normalizeContentType(req.ContentType)]; !ok {
		return nil, apperr.BadRequest("content type not allowed")
	}

	fileName := keys.SanitizeFileName(req.FileName)
	folder := keys.SanitizeFolder(req.Folder)
	objectKey := keys.BuildObjectKey(folder, id.UserID, fileName, s.now().UnixMilli())

	bucket := s.buckets.BucketFor(id.AppID)
	if err := s.buckets.Ensure(ctx, bucket); err != nil {
		return nil, err
	}

	uploadURL, err := s.store.PresignPut(ctx, bucket, objectKey, req.ContentType, s.urlExpiry)
	if err != nil {
		return nil, apperr.Unavailable("storage unavailable")
	}

	return &UploadURLResult{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresIn: int(s.urlExpiry.Seconds()),
	}, nil
}

// DeleteObject authorizes the delete from the object key and caller identity
// alone, then removes the object. Storage is never touched when the
// ownership check fails.
func (s *Service) DeleteObject(ctx context.Context, objectKey string, id *auth.Identity) error {
	if objectKey == "" {
		return apperr.BadRequest("invalid object key")
	}
	if strings.Contains(objectKey, "..") || strings.Contains(objectKey, "\x00") {
		return apperr.Forbidden("invalid object key")
	}
	if !keys.BelongsToUser(objectKey, id.UserID) {
		return apperr.Forbidden("access denied")
	}

	bucket := s.buckets.BucketFor(id.AppID)
	if err := s.store.Remove(ctx, bucket, objectKey); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return apperr.NotFound("object not found")
		}
		return apperr.Unavailable("storage error")
	}
	return nil
}

// normalizeContentType drops any parameter suffix ("; charset=...") and
// lower-cases for allowlist comparison. The original, un-normalized value is
// what gets signed into the upload URL.
func normalizeContentType(ct string) string {
	base, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
