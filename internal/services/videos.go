package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type VideoStore interface {
	Create(ctx context.Context, v *models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	List(ctx context.Context, q store.VideoQuery) (*models.VideoPage, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Video, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Video, error)
	TogglePublished(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// VideoCleanup is everything that references a video and must go with it.
type VideoCleanup interface {
	DeleteCommentsOf(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteLikesOf(ctx context.Context, target models.LikeTarget, ids []primitive.ObjectID) error
	PullFromPlaylists(ctx context.Context, videoID primitive.ObjectID) error
	PullFromHistories(ctx context.Context, videoID primitive.ObjectID) error
}

type WatchHistoryRecorder interface {
	PushWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error
}

type VideoService struct {
	videos  VideoStore
	cleanup VideoCleanup
	history WatchHistoryRecorder
	media   MediaStore
	log     *zap.Logger
}

func NewVideoService(videos VideoStore, cleanup VideoCleanup, history WatchHistoryRecorder, media MediaStore, log *zap.Logger) *VideoService {
	return &VideoService{videos: videos, cleanup: cleanup, history: history, media: media, log: log}
}

// ListVideos returns published videos, plus unpublished ones when the
// caller lists their own channel.
func (s *VideoService) ListVideos(ctx context.Context, q store.VideoQuery, viewer primitive.ObjectID) (*models.VideoPage, error) {
	q.Unlisted = q.Owner != nil && *q.Owner == viewer
	page, err := s.videos.List(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list videos")
	}
	return page, nil
}

type PublishInput struct {
	Title       string
	Description string
	Duration    float64
	Video       *File
	Thumbnail   *File
}

func (s *VideoService) Publish(ctx context.Context, owner primitive.ObjectID, in PublishInput) (*models.Video, error) {
	if in.Video == nil {
		return nil, apperr.Validation("Video file is required")
	}
	if in.Thumbnail == nil {
		return nil, apperr.Validation("Thumbnail is required")
	}

	video, err := uploadFile(ctx, s.media, in.Video, "videos", MediaVideo)
	if err != nil {
		return nil, err
	}
	thumb, err := uploadFile(ctx, s.media, in.Thumbnail, "thumbnails", MediaImage)
	if err != nil {
		discardAsset(s.media, s.log, video.PublicID, MediaVideo)
		return nil, err
	}

	v := &models.Video{
		VideoFile:         video.URL,
		VideoPublicID:     video.PublicID,
		Thumbnail:         thumb.URL,
		ThumbnailPublicID: thumb.PublicID,
		Title:             in.Title,
		Description:       in.Description,
		Duration:          in.Duration,
		IsPublished:       true,
		Owner:             owner,
	}
	if err := s.videos.Create(ctx, v); err != nil {
		discardAsset(s.media, s.log, video.PublicID, MediaVideo)
		discardAsset(s.media, s.log, thumb.PublicID, MediaImage)
		return nil, apperr.Internal(err, "failed to save video")
	}
	return v, nil
}

// Watch loads a video for viewing: it counts the view and records it in the
// viewer's history. Unpublished videos are only visible to their owner.
func (s *VideoService) Watch(ctx context.Context, id, viewer primitive.ObjectID) (*models.Video, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsPublished && v.Owner != viewer {
		return nil, apperr.NotFound("Video not found")
	}

	if err := s.videos.IncrementViews(ctx, id); err != nil {
		return nil, apperr.Internal(err, "failed to count view")
	}
	v.Views++
	if err := s.history.PushWatchHistory(ctx, viewer, id); err != nil {
		s.log.Warn("failed to record watch history", zap.String("video_id", id.Hex()), zap.Error(err))
	}
	return v, nil
}

type VideoUpdate struct {
	Title       *string
	Description *string
	Thumbnail   *File
}

func (s *VideoService) Update(ctx context.Context, id, actor primitive.ObjectID, in VideoUpdate) (*models.Video, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(v.Owner, actor, "video"); err != nil {
		return nil, err
	}

	set := bson.M{}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	var thumb *MediaAsset
	if in.Thumbnail != nil {
		thumb, err = uploadFile(ctx, s.media, in.Thumbnail, "thumbnails", MediaImage)
		if err != nil {
			return nil, err
		}
		set["thumbnail"] = thumb.URL
		set["thumbnailPublicId"] = thumb.PublicID
	}
	if len(set) == 0 {
		return nil, apperr.Validation("Nothing to update")
	}

	updated, err := s.videos.Update(ctx, id, set)
	if err != nil {
		if thumb != nil {
			discardAsset(s.media, s.log, thumb.PublicID, MediaImage)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Video not found")
		}
		return nil, apperr.Internal(err, "failed to update video")
	}
	if thumb != nil {
		discardAsset(s.media, s.log, v.ThumbnailPublicID, MediaImage)
	}
	return updated, nil
}

// Delete removes the video with its comments, likes and media.
func (s *VideoService) Delete(ctx context.Context, id, actor primitive.ObjectID) error {
	v, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := RequireOwner(v.Owner, actor, "video"); err != nil {
		return err
	}

	if err := s.videos.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Video not found")
		}
		return apperr.Internal(err, "failed to delete video")
	}

	log := s.log.With(zap.String("video_id", id.Hex()))
	commentIDs, err := s.cleanup.DeleteCommentsOf(ctx, id)
	if err != nil {
		log.Warn("failed to delete comments", zap.Error(err))
	}
	if err := s.cleanup.DeleteLikesOf(ctx, models.LikeComment, commentIDs); err != nil {
		log.Warn("failed to delete comment likes", zap.Error(err))
	}
	if err := s.cleanup.DeleteLikesOf(ctx, models.LikeVideo, []primitive.ObjectID{id}); err != nil {
		log.Warn("failed to delete video likes", zap.Error(err))
	}
	if err := s.cleanup.PullFromPlaylists(ctx, id); err != nil {
		log.Warn("failed to remove video from playlists", zap.Error(err))
	}
	if err := s.cleanup.PullFromHistories(ctx, id); err != nil {
		log.Warn("failed to remove video from watch histories", zap.Error(err))
	}
	discardAsset(s.media, s.log, v.VideoPublicID, MediaVideo)
	discardAsset(s.media, s.log, v.ThumbnailPublicID, MediaImage)
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, id, actor primitive.ObjectID) (*models.Video, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(v.Owner, actor, "video"); err != nil {
		return nil, err
	}
	updated, err := s.videos.TogglePublished(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Video not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to toggle publish status")
	}
	return updated, nil
}

// ChannelVideos lists every video of the owner's channel for the dashboard.
func (s *VideoService) ChannelVideos(ctx context.Context, owner primitive.ObjectID) ([]models.Video, error) {
	vs, err := s.videos.ListByOwner(ctx, owner)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list channel videos")
	}
	return vs, nil
}

func (s *VideoService) find(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	v, err := s.videos.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Video not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load video")
	}
	return v, nil
}
