package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlaylistStore interface {
	Create(ctx context.Context, p *models.Playlist) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error)
	Detail(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID, p store.Page) (*models.PlaylistPage, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Playlist, error)
	AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PlaylistService struct {
	playlists PlaylistStore
	videos    ExistenceChecker
}

func NewPlaylistService(playlists PlaylistStore, videos ExistenceChecker) *PlaylistService {
	return &PlaylistService{playlists: playlists, videos: videos}
}

func (s *PlaylistService) Create(ctx context.Context, owner primitive.ObjectID, name, description string) (*models.Playlist, error) {
	p := &models.Playlist{Name: name, Description: description, Owner: owner}
	if err := s.playlists.Create(ctx, p); err != nil {
		return nil, apperr.Internal(err, "failed to create playlist")
	}
	return p, nil
}

func (s *PlaylistService) Get(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error) {
	p, err := s.playlists.Detail(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Playlist not found", "failed to load playlist")
	}
	return p, nil
}

func (s *PlaylistService) ListByUser(ctx context.Context, owner primitive.ObjectID, page store.Page) (*models.PlaylistPage, error) {
	p, err := s.playlists.ListByOwner(ctx, owner, page)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list playlists")
	}
	return p, nil
}

func (s *PlaylistService) Update(ctx context.Context, id, actor primitive.ObjectID, name, description *string) (*models.Playlist, error) {
	if err := s.checkOwner(ctx, id, actor); err != nil {
		return nil, err
	}
	set := bson.M{}
	if name != nil {
		set["name"] = *name
	}
	if description != nil {
		set["description"] = *description
	}
	if len(set) == 0 {
		return nil, apperr.Validation("Nothing to update")
	}
	p, err := s.playlists.Update(ctx, id, set)
	if err != nil {
		return nil, notFoundOr(err, "Playlist not found", "failed to update playlist")
	}
	return p, nil
}

func (s *PlaylistService) Delete(ctx context.Context, id, actor primitive.ObjectID) error {
	if err := s.checkOwner(ctx, id, actor); err != nil {
		return err
	}
	if err := s.playlists.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Playlist not found", "failed to delete playlist")
	}
	return nil
}

func (s *PlaylistService) AddVideo(ctx context.Context, id, videoID, actor primitive.ObjectID) (*models.Playlist, error) {
	if err := s.checkOwner(ctx, id, actor); err != nil {
		return nil, err
	}
	if err := requireExists(ctx, s.videos, videoID, "Video"); err != nil {
		return nil, err
	}
	p, err := s.playlists.AddVideo(ctx, id, videoID)
	if err != nil {
		return nil, notFoundOr(err, "Playlist not found", "failed to add video to playlist")
	}
	return p, nil
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, id, videoID, actor primitive.ObjectID) (*models.Playlist, error) {
	if err := s.checkOwner(ctx, id, actor); err != nil {
		return nil, err
	}
	p, err := s.playlists.RemoveVideo(ctx, id, videoID)
	if err != nil {
		return nil, notFoundOr(err, "Playlist not found", "failed to remove video from playlist")
	}
	return p, nil
}

func (s *PlaylistService) checkOwner(ctx context.Context, id, actor primitive.ObjectID) error {
	p, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Playlist not found", "failed to load playlist")
	}
	return RequireOwner(p.Owner, actor, "playlist")
}

// notFoundOr maps store.ErrNotFound to a 404 and anything else to a 500.
func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Internal(err, internalMsg)
}
