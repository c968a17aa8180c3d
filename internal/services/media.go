package services

import (
	"context"
	"io"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"go.uber.org/zap"
)

// MediaKind separates image and video assets; CDNs store them apart.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

type UploadOptions struct {
	Folder      string
	Kind        MediaKind
	Filename    string
	ContentType string
}

// MediaAsset is a stored file: its public URL and the id used to delete it.
type MediaAsset struct {
	URL      string
	PublicID string
}

// MediaStore is the external media collaborator. Implementations must be
// safe for concurrent use.
type MediaStore interface {
	Upload(ctx context.Context, file io.Reader, opts UploadOptions) (*MediaAsset, error)
	Delete(ctx context.Context, publicID string, kind MediaKind) error
}

func uploadFile(ctx context.Context, media MediaStore, f *File, folder string, kind MediaKind) (*MediaAsset, error) {
	asset, err := media.Upload(ctx, f.Reader, UploadOptions{
		Folder:      folder,
		Kind:        kind,
		Filename:    f.Filename,
		ContentType: f.ContentType,
	})
	if err != nil {
		return nil, apperr.Internal(err, "failed to upload file")
	}
	return asset, nil
}

// discardAsset removes an asset that is no longer referenced. Failures leave
// an orphan in the media store and are only logged.
func discardAsset(media MediaStore, log *zap.Logger, publicID string, kind MediaKind) {
	if publicID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := media.Delete(ctx, publicID, kind); err != nil {
		log.Warn("failed to delete media asset", zap.String("public_id", publicID), zap.Error(err))
	}
}
