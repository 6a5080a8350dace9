package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

type signer interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	PublicURL(object string) string
}

type objectRemover interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, payload any, attrs map[string]string) (string, error)
}

// Service presigns image uploads and removes stored images.
type Service interface {
	PresignUploads(ctx context.Context, current []File, uploads []UploadRequest) (*PresignOutput, error)
	Delete(ctx context.Context, files []File) error
}

type Config struct {
	Directory      string
	Bucket         string
	UploadTTL      time.Duration
	MaxUploadBytes int64
}

// UploadRequest describes one file the admin wants to upload.
type UploadRequest struct {
	Name        string `json:"name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	SizeBytes   int64  `json:"size_bytes" validate:"gte=0"`
}

// Upload is a signed PUT target for one accepted file.
type Upload struct {
	File
	ObjectKey    string    `json:"object_key"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// PresignOutput carries the merged file list and the uploads to perform.
type PresignOutput struct {
	Files   []File   `json:"files"`
	Uploads []Upload `json:"uploads"`
	Skipped []string `json:"skipped,omitempty"`
}

type service struct {
	cfg       Config
	signer    signer
	remover   objectRemover
	publisher eventPublisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the media service. With a nil publisher deletions are
// applied inline instead of queued.
func NewService(cfg Config, signer signer, remover objectRemover, publisher eventPublisher, logg *logger.Logger) (Service, error) {
	if signer == nil {
		return nil, fmt.Errorf("gcs signer required")
	}
	if remover == nil && publisher == nil {
		return nil, fmt.Errorf("object remover or deletion publisher required")
	}
	if strings.TrimSpace(cfg.Directory) == "" {
		return nil, fmt.Errorf("media directory required")
	}
	if cfg.UploadTTL <= 0 {
		return nil, fmt.Errorf("upload ttl must be positive")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{cfg: cfg, signer: signer, remover: remover, publisher: publisher, logg: logg, now: time.Now}, nil
}

// PresignUploads signs a PUT for each image in uploads. Files whose name is
// already present in current are signed but not added to the merged list.
// Non-image files are skipped.
func (s *service) PresignUploads(ctx context.Context, current []File, uploads []UploadRequest) (*PresignOutput, error) {
	if len(uploads) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one upload is required")
	}

	merged := append([]File(nil), current...)
	known := make(map[string]struct{}, len(current))
	for _, file := range current {
		known[file.Name] = struct{}{}
	}

	out := &PresignOutput{Uploads: make([]Upload, 0, len(uploads))}
	expiresAt := s.now().Add(s.cfg.UploadTTL)
	for _, req := range uploads {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
		}
		contentType, isImage := imageContentType(req.ContentType)
		if !isImage {
			out.Skipped = append(out.Skipped, name)
			continue
		}
		if s.cfg.MaxUploadBytes > 0 && req.SizeBytes > s.cfg.MaxUploadBytes {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s exceeds %d bytes", name, s.cfg.MaxUploadBytes)).
				WithDetails(map[string]any{"name": name})
		}

		id := uuid.New()
		key := ObjectKey(s.cfg.Directory, id, name)
		signed, err := s.signer.SignedURL(s.cfg.Bucket, key, contentType, s.cfg.UploadTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
		}
		file := File{ID: id, Name: name, Src: s.signer.PublicURL(key)}
		out.Uploads = append(out.Uploads, Upload{
			File:         file,
			ObjectKey:    key,
			SignedPUTURL: signed,
			ContentType:  contentType,
			ExpiresAt:    expiresAt,
		})
		if _, exists := known[name]; !exists {
			known[name] = struct{}{}
			merged = append(merged, file)
		}
	}
	out.Files = merged
	return out, nil
}

// Delete removes every file, continuing past failures.
func (s *service) Delete(ctx context.Context, files []File) error {
	var errs error
	for _, file := range files {
		if file.ID == uuid.Nil || strings.TrimSpace(file.Name) == "" {
			errs = multierr.Append(errs, fmt.Errorf("file %q: id and name are required", file.Name))
			continue
		}
		key := ObjectKey(s.cfg.Directory, file.ID, file.Name)
		if err := s.deleteOne(ctx, file, key); err != nil {
			logCtx := s.logg.WithField(ctx, "object_key", key)
			s.logg.Error(logCtx, "media.delete_failed", err)
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "delete media")
	}
	return nil
}

func (s *service) deleteOne(ctx context.Context, file File, key string) error {
	if s.publisher == nil {
		return s.remover.DeleteObject(ctx, s.cfg.Bucket, key)
	}
	_, err := s.publisher.Publish(ctx, DeletionEvent{
		ObjectKey:   key,
		Bucket:      s.cfg.Bucket,
		FileID:      file.ID,
		Name:        file.Name,
		RequestedAt: s.now().UTC(),
	}, map[string]string{EventTypeAttr: DeletionRequestedEvent})
	return err
}
