package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/middleware"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/response"
	"github.com/AnshRaj112/vidtube-backend/internal/services"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Sessions      *services.SessionManager
	Accounts      *services.AccountService
	Videos        *services.VideoService
	Comments      *services.CommentService
	Tweets        *services.TweetService
	Playlists     *services.PlaylistService
	Likes         *services.LikeService
	Subscriptions *services.SubscriptionService
	Dashboard     *services.DashboardService
	Health        Pinger

	CookieSecure   bool
	MaxUploadBytes int64
	Log            *zap.Logger
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 200 << 20
	}
	return &Handler{Deps: d}
}

// HandlerFunc is an http.HandlerFunc that reports failure by returning it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap turns a HandlerFunc into an http.HandlerFunc. Returned errors become
// the failure envelope; internal ones are logged with their cause.
func (h *Handler) Wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err),
		}
		if apperr.StatusOf(err) >= http.StatusInternalServerError {
			h.Log.Error("request failed", fields...)
		} else {
			h.Log.Debug("request rejected", fields...)
		}
		response.Error(w, err)
	}
}

func currentUser(r *http.Request) (*models.User, error) {
	u, ok := middleware.CurrentUser(r.Context())
	if !ok {
		return nil, apperr.Unauthenticated("Unauthorized request")
	}
	return u, nil
}

// idParam parses a hex object id from the named chi URL parameter.
func idParam(r *http.Request, name string) (primitive.ObjectID, error) {
	return services.ParseID(chi.URLParam(r, name), name)
}

func pageParams(r *http.Request) (store.Page, error) {
	q := r.URL.Query()
	page, err := intQuery(q.Get("page"), 1, "page")
	if err != nil {
		return store.Page{}, err
	}
	if page > store.MaxPage {
		return store.Page{}, apperr.Validation(fmt.Sprintf("page must be at most %d", store.MaxPage))
	}
	limit, err := intQuery(q.Get("limit"), store.DefaultLimit, "limit")
	if err != nil {
		return store.Page{}, err
	}
	return store.Page{Page: page, Limit: limit}.Normalize(), nil
}

func intQuery(raw string, def int64, name string) (int64, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, apperr.Validation(name + " must be a positive integer")
	}
	return n, nil
}

// parseMultipart bounds and parses a multipart body.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return apperr.Validation("Expected multipart/form-data")
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("Upload is too large")
		}
		return apperr.Wrap(apperr.KindValidation, err, "Invalid multipart form")
	}
	return nil
}

// formFile opens the named upload. It returns nil when the field is absent.
// The caller closes the returned file.
func formFile(r *http.Request, name string) (*services.File, multipart.File, error) {
	f, header, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindValidation, err, "Invalid "+name+" upload")
	}
	return &services.File{
		Reader:      f,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, f, nil
}

func closeFile(f multipart.File) {
	if f != nil {
		_ = f.Close()
	}
}
