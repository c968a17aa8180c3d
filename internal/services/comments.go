package services

import (
	"context"
	"errors"
	"strings"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByVideo(ctx context.Context, videoID primitive.ObjectID, p store.Page) ([]models.CommentWithOwner, int64, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ExistenceChecker answers whether a referenced document exists.
type ExistenceChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type CommentPage struct {
	Comments []models.CommentWithOwner `json:"comments"`
	Total    int64                     `json:"total"`
	Page     int64                     `json:"page"`
	Limit    int64                     `json:"limit"`
}

type CommentService struct {
	comments CommentStore
	videos   ExistenceChecker
	likes    likePurger
	log      *zap.Logger
}

func NewCommentService(comments CommentStore, videos ExistenceChecker, likes likePurger, log *zap.Logger) *CommentService {
	return &CommentService{comments: comments, videos: videos, likes: likes, log: log}
}

func (s *CommentService) List(ctx context.Context, videoID primitive.ObjectID, p store.Page) (*CommentPage, error) {
	p = p.Normalize()
	list, total, err := s.comments.ListByVideo(ctx, videoID, p)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list comments")
	}
	return &CommentPage{Comments: list, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func (s *CommentService) Add(ctx context.Context, videoID, owner primitive.ObjectID, content string) (*models.Comment, error) {
	if err := requireExists(ctx, s.videos, videoID, "Video"); err != nil {
		return nil, err
	}
	c := &models.Comment{Content: content, Video: videoID, Owner: owner}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, apperr.Internal(err, "failed to add comment")
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, id, actor primitive.ObjectID, content string) (*models.Comment, error) {
	if _, err := s.owned(ctx, id, actor); err != nil {
		return nil, err
	}
	c, err := s.comments.UpdateContent(ctx, id, content)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Comment not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to update comment")
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, id, actor primitive.ObjectID) error {
	if _, err := s.owned(ctx, id, actor); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Comment not found")
		}
		return apperr.Internal(err, "failed to delete comment")
	}
	if err := s.likes.DeleteForTargets(ctx, models.LikeComment, []primitive.ObjectID{id}); err != nil {
		s.log.Warn("failed to delete comment likes", zap.String("comment_id", id.Hex()), zap.Error(err))
	}
	return nil
}

func (s *CommentService) owned(ctx context.Context, id, actor primitive.ObjectID) (*models.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Comment not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load comment")
	}
	if err := RequireOwner(c.Owner, actor, "comment"); err != nil {
		return nil, err
	}
	return c, nil
}

func requireExists(ctx context.Context, c ExistenceChecker, id primitive.ObjectID, what string) error {
	ok, err := c.Exists(ctx, id)
	if err != nil {
		return apperr.Internal(err, "failed to look up "+strings.ToLower(what))
	}
	if !ok {
		return apperr.NotFound(what + " not found")
	}
	return nil
}
