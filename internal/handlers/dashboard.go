package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/response"
)

func (h *Handler) ChannelStats(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	stats, err := h.Dashboard.Stats(r.Context(), u.ID)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, stats, "Channel stats fetched successfully")
	return nil
}

func (h *Handler) ChannelVideos(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	videos, err := h.Dashboard.Videos(r.Context(), u.ID)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, videos, "Channel videos fetched successfully")
	return nil
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Healthcheck reports 503 when the database does not answer within two
// seconds.
func (h *Handler) Healthcheck(w http.ResponseWriter, r *http.Request) error {
	if h.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Health.Ping(ctx); err != nil {
			return apperr.Wrap(apperr.KindUnavailable, err, "Database unavailable")
		}
	}
	response.Success(w, http.StatusOK, healthStatus{Status: "ok", Database: "up"}, "Health check passed")
	return nil
}
