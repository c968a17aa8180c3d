package handlers

import (
	"net/http"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createPlaylistRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type updatePlaylistRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	var req createPlaylistRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	p, err := h.Playlists.Create(r.Context(), u.ID, req.Name, req.Description)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusCreated, p, "Playlist created successfully")
	return nil
}

func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "playlistId")
	if err != nil {
		return err
	}
	p, err := h.Playlists.Get(r.Context(), id)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, p, "Playlist fetched successfully")
	return nil
}

func (h *Handler) UserPlaylists(w http.ResponseWriter, r *http.Request) error {
	owner, err := idParam(r, "userId")
	if err != nil {
		return err
	}
	page, err := pageParams(r)
	if err != nil {
		return err
	}
	out, err := h.Playlists.ListByUser(r.Context(), owner, page)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, out, "Playlists fetched successfully")
	return nil
}

func (h *Handler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) error {
	var req updatePlaylistRequest
	return h.ownedAction(w, r, "playlistId", func(id, actor primitive.ObjectID) (any, error) {
		if err := response.DecodeJSON(w, r, &req); err != nil {
			return nil, err
		}
		if req.Name == nil && req.Description == nil {
			return nil, apperr.Validation("name or description is required")
		}
		return h.Playlists.Update(r.Context(), id, actor, req.Name, req.Description)
	}, "Playlist updated successfully")
}

func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) error {
	return h.ownedAction(w, r, "playlistId", func(id, actor primitive.ObjectID) (any, error) {
		return struct{}{}, h.Playlists.Delete(r.Context(), id, actor)
	}, "Playlist deleted successfully")
}

func (h *Handler) AddVideoToPlaylist(w http.ResponseWriter, r *http.Request) error {
	videoID, err := idParam(r, "videoId")
	if err != nil {
		return err
	}
	return h.ownedAction(w, r, "playlistId", func(id, actor primitive.ObjectID) (any, error) {
		return h.Playlists.AddVideo(r.Context(), id, videoID, actor)
	}, "Video added to playlist")
}

func (h *Handler) RemoveVideoFromPlaylist(w http.ResponseWriter, r *http.Request) error {
	videoID, err := idParam(r, "videoId")
	if err != nil {
		return err
	}
	return h.ownedAction(w, r, "playlistId", func(id, actor primitive.ObjectID) (any, error) {
		return h.Playlists.RemoveVideo(r.Context(), id, videoID, actor)
	}, "Video removed from playlist")
}
