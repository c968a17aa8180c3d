package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/response"
	"github.com/AnshRaj112/vidtube-backend/internal/services"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type publishRequest struct {
	Title       string  `form:"title" validate:"required,max=200"`
	Description string  `form:"description" validate:"required,max=5000"`
	Duration    float64 `form:"duration" validate:"gte=0"`
}

type updateVideoRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	page, err := pageParams(r)
	if err != nil {
		return err
	}
	q := r.URL.Query()

	query := store.VideoQuery{Page: page, Search: strings.TrimSpace(q.Get("query")), SortBy: "createdAt"}
	if sortBy := q.Get("sortBy"); sortBy != "" {
		if !store.ValidVideoSort(sortBy) {
			return apperr.Validation("sortBy must be one of createdAt, views, duration, title")
		}
		query.SortBy = sortBy
	}
	switch strings.ToLower(q.Get("sortType")) {
	case "", "desc":
	case "asc":
		query.Asc = true
	default:
		return apperr.Validation("sortType must be asc or desc")
	}
	if raw := q.Get("userId"); raw != "" {
		owner, err := services.ParseID(raw, "userId")
		if err != nil {
			return err
		}
		query.Owner = &owner
	}

	videos, err := h.Videos.ListVideos(r.Context(), query, u.ID)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, videos, "Videos fetched successfully")
	return nil
}

func (h *Handler) PublishVideo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := h.parseMultipart(w, r); err != nil {
		return err
	}
	req := publishRequest{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return apperr.Validation("duration must be a number of seconds")
		}
		req.Duration = d
	}
	if err := response.Validate(&req); err != nil {
		return err
	}

	video, videoFile, err := formFile(r, "video")
	if err != nil {
		return err
	}
	defer closeFile(videoFile)
	thumb, thumbFile, err := formFile(r, "thumbnail")
	if err != nil {
		return err
	}
	defer closeFile(thumbFile)

	v, err := h.Videos.Publish(r.Context(), u.ID, services.PublishInput{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Video:       video,
		Thumbnail:   thumb,
	})
	if err != nil {
		return err
	}
	response.Success(w, http.StatusCreated, v, "Video published successfully")
	return nil
}

func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	id, err := idParam(r, "videoId")
	if err != nil {
		return err
	}
	v, err := h.Videos.Watch(r.Context(), id, u.ID)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, v, "Video fetched successfully")
	return nil
}

// UpdateVideo accepts JSON, or multipart when a new thumbnail is uploaded.
func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	id, err := idParam(r, "videoId")
	if err != nil {
		return err
	}

	var (
		req   updateVideoRequest
		thumb *services.File
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := h.parseMultipart(w, r); err != nil {
			return err
		}
		if _, ok := r.MultipartForm.Value["title"]; ok {
			t := strings.TrimSpace(r.FormValue("title"))
			req.Title = &t
		}
		if _, ok := r.MultipartForm.Value["description"]; ok {
			d := strings.TrimSpace(r.FormValue("description"))
			req.Description = &d
		}
		if err := response.Validate(&req); err != nil {
			return err
		}
		f, file, err := formFile(r, "thumbnail")
		if err != nil {
			return err
		}
		defer closeFile(file)
		thumb = f
	} else if err := response.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	v, err := h.Videos.Update(r.Context(), id, u.ID, services.VideoUpdate{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   thumb,
	})
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, v, "Video updated successfully")
	return nil
}

func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) error {
	return h.ownedAction(w, r, "videoId", func(id, actor primitive.ObjectID) (any, error) {
		return struct{}{}, h.Videos.Delete(r.Context(), id, actor)
	}, "Video deleted successfully")
}

func (h *Handler) TogglePublishStatus(w http.ResponseWriter, r *http.Request) error {
	return h.ownedAction(w, r, "videoId", func(id, actor primitive.ObjectID) (any, error) {
		return h.Videos.TogglePublish(r.Context(), id, actor)
	}, "Publish status toggled successfully")
}

// ownedAction parses the id parameter, runs fn as the current user and
// writes its result.
func (h *Handler) ownedAction(w http.ResponseWriter, r *http.Request, param string, fn func(id, actor primitive.ObjectID) (any, error), msg string) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	id, err := idParam(r, param)
	if err != nil {
		return err
	}
	out, err := fn(id, u.ID)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, out, msg)
	return nil
}
