package handlers

import (
	"net/http"

	"github.com/AnshRaj112/vidtube-backend/internal/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) error {
	videoID, err := idParam(r, "videoId")
	if err != nil {
		return err
	}
	page, err := pageParams(r)
	if err != nil {
		return err
	}
	comments, err := h.Comments.List(r.Context(), videoID, page)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, comments, "Comments fetched successfully")
	return nil
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	videoID, err := idParam(r, "videoId")
	if err != nil {
		return err
	}
	var req contentRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	c, err := h.Comments.Add(r.Context(), videoID, u.ID, req.Content)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusCreated, c, "Comment added successfully")
	return nil
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) error {
	var req contentRequest
	return h.ownedAction(w, r, "commentId", func(id, actor primitive.ObjectID) (any, error) {
		if err := response.DecodeJSON(w, r, &req); err != nil {
			return nil, err
		}
		return h.Comments.Update(r.Context(), id, actor, req.Content)
	}, "Comment updated successfully")
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) error {
	return h.ownedAction(w, r, "commentId", func(id, actor primitive.ObjectID) (any, error) {
		return struct{}{}, h.Comments.Delete(r.Context(), id, actor)
	}, "Comment deleted successfully")
}
