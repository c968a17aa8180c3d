package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/middleware"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/response"
	"github.com/AnshRaj112/vidtube-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

const RefreshTokenCookie = "refreshToken"

type registerRequest struct {
	Username string `form:"username" validate:"required,min=3,max=30"`
	Email    string `form:"email" validate:"required,email"`
	FullName string `form:"fullname" validate:"required,max=100"`
	Password string `form:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type updateAccountRequest struct {
	FullName string `json:"fullname" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
}

type sessionResponse struct {
	User         *models.User `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	if err := h.parseMultipart(w, r); err != nil {
		return err
	}
	req := registerRequest{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		FullName: strings.TrimSpace(r.FormValue("fullname")),
		Password: r.FormValue("password"),
	}
	if err := response.Validate(&req); err != nil {
		return err
	}

	avatar, avatarFile, err := formFile(r, "avatar")
	if err != nil {
		return err
	}
	defer closeFile(avatarFile)
	cover, coverFile, err := formFile(r, "coverImage")
	if err != nil {
		return err
	}
	defer closeFile(coverFile)

	u, err := h.Accounts.Register(r.Context(), services.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		return err
	}
	response.Success(w, http.StatusCreated, u, "User registered successfully")
	return nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	s, err := h.Sessions.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setSessionCookies(w, s)
	response.Success(w, http.StatusOK, sessionResponse{
		User:         s.User,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}, "User logged in successfully")
	return nil
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := h.Sessions.Logout(r.Context(), u.ID); err != nil {
		return err
	}
	h.clearSessionCookies(w)
	response.Success(w, http.StatusOK, struct{}{}, "User logged out")
	return nil
}

// RefreshToken rotates the session. The token comes from the cookie or,
// for clients without cookies, from the JSON body.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) error {
	token := ""
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" && r.ContentLength != 0 {
		var req refreshRequest
		if err := response.DecodeJSON(w, r, &req); err != nil {
			return err
		}
		token = req.RefreshToken
	}

	s, err := h.Sessions.Refresh(r.Context(), token)
	if err != nil {
		return err
	}
	h.setSessionCookies(w, s)
	response.Success(w, http.StatusOK, sessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}, "Access token refreshed")
	return nil
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := h.Accounts.ChangePassword(r.Context(), u.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	response.Success(w, http.StatusOK, struct{}{}, "Password changed successfully")
	return nil
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, u, "Current user fetched successfully")
	return nil
}

func (h *Handler) UpdateAccountDetails(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	updated, err := h.Accounts.UpdateDetails(r.Context(), u.ID, strings.TrimSpace(req.FullName), req.Email)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, updated, "Account details updated successfully")
	return nil
}

func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	return h.updateImage(w, r, "avatar", h.Accounts.UpdateAvatar, "Avatar updated successfully")
}

func (h *Handler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) error {
	return h.updateImage(w, r, "coverImage", h.Accounts.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdater func(ctx context.Context, u *models.User, f *services.File) (*models.User, error)

func (h *Handler) updateImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdater, msg string) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := h.parseMultipart(w, r); err != nil {
		return err
	}
	f, file, err := formFile(r, field)
	if err != nil {
		return err
	}
	defer closeFile(file)
	if f == nil {
		return apperr.Validation(field + " file is missing")
	}

	updated, err := update(r.Context(), u, f)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, updated, msg)
	return nil
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := h.Accounts.DeleteAccount(r.Context(), u); err != nil {
		return err
	}
	h.clearSessionCookies(w)
	response.Success(w, http.StatusOK, struct{}{}, "User deleted successfully")
	return nil
}

func (h *Handler) ChannelProfile(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	p, err := h.Accounts.ChannelProfile(r.Context(), chi.URLParam(r, "username"), u.ID)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, p, "User channel fetched successfully")
	return nil
}

func (h *Handler) WatchHistory(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	history, err := h.Accounts.WatchHistory(r.Context(), u.ID)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, history, "Watch history fetched successfully")
	return nil
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, s *services.Session) {
	codec := h.Sessions.Codec()
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, s.AccessToken, codec.AccessTTL()))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, s.RefreshToken, codec.RefreshTTL()))
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, "", -1))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, "", -1))
}

// cookie builds a session cookie. A negative ttl deletes it.
func (h *Handler) cookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}
