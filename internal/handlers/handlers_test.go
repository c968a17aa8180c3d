package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    *bool           `json:"success"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func registerRequestBody(t *testing.T, fields map[string]string, files ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range files {
		fw, err := mw.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG fake image"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) register(t *testing.T, username, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := registerRequestBody(t, map[string]string{
		"username": username,
		"email":    email,
		"fullname": "Ana Test",
		"password": password,
	}, "avatar", "coverImage")
	req := httptest.NewRequest(http.MethodPost, "/users/register", body)
	req.Header.Set("Content-Type", ct)
	return e.do(req)
}

func (e *testEnv) login(t *testing.T, username, password string) (*httptest.ResponseRecorder, map[string]*http.Cookie) {
	t.Helper()
	rec := e.do(jsonRequest(http.MethodPost, "/users/login",
		`{"username":"`+username+`","password":"`+password+`"}`))
	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	return rec, cookies
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv()

	rec := env.register(t, "Ana", "A@X.com", "Secret123")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	reg := decode(t, rec)
	assert.Equal(t, http.StatusCreated, reg.StatusCode)
	assert.Contains(t, string(reg.Data), `"username":"ana"`)
	assert.Contains(t, string(reg.Data), `"email":"a@x.com"`)

	rec, cookies := env.login(t, "ana", "Secret123")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, cookies, middleware.AccessTokenCookie)
	require.Contains(t, cookies, RefreshTokenCookie)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
		assert.Equal(t, "/", c.Path)
	}
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "refreshTokenHash")

	var session sessionResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &session))
	assert.Equal(t, cookies[middleware.AccessTokenCookie].Value, session.AccessToken)
	assert.Equal(t, cookies[RefreshTokenCookie].Value, session.RefreshToken)
}

func TestRegister_Rejections(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, http.StatusCreated, env.register(t, "ana", "a@x.com", "Secret123").Code)

	t.Run("duplicate", func(t *testing.T) {
		rec := env.register(t, "ana", "other@x.com", "Secret123")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		failure := decode(t, rec)
		require.NotNil(t, failure.Success)
		assert.False(t, *failure.Success)
	})

	t.Run("missing avatar", func(t *testing.T) {
		body, ct := registerRequestBody(t, map[string]string{
			"username": "bob", "email": "b@x.com", "fullname": "Bob", "password": "Secret123",
		}, "coverImage")
		req := httptest.NewRequest(http.MethodPost, "/users/register", body)
		req.Header.Set("Content-Type", ct)
		rec := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Avatar file is required", decode(t, rec).Message)
	})

	t.Run("bad email", func(t *testing.T) {
		rec := env.register(t, "carl", "not-an-email", "Secret123")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("json instead of multipart", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPost, "/users/register", `{"username":"dan"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin_FailuresAreGeneric(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, http.StatusCreated, env.register(t, "ana", "a@x.com", "Secret123").Code)

	wrongPassword, cookies := env.login(t, "ana", "nope-nope")
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Empty(t, cookies)

	unknownUser, _ := env.login(t, "nobody", "Secret123")
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)

	assert.Equal(t, decode(t, wrongPassword).Message, decode(t, unknownUser).Message)
}

func TestLogin_UsernameAndEmailTogether(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, http.StatusCreated, env.register(t, "ana", "a@x.com", "Secret123").Code)

	rec := env.do(jsonRequest(http.MethodPost, "/users/login",
		`{"username":"ana","email":"a@x.com","password":"Secret123"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	names := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = true
		assert.True(t, c.Secure)
	}
	assert.True(t, names[middleware.AccessTokenCookie])
	assert.True(t, names[RefreshTokenCookie])
	assert.Contains(t, string(decode(t, rec).Data), `"username":"ana"`)
}

func TestLogin_RequiresIdentifier(t *testing.T) {
	env := newTestEnv()
	rec := env.do(jsonRequest(http.MethodPost, "/users/login", `{"password":"Secret123"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentUser_RequiresToken(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, http.StatusCreated, env.register(t, "ana", "a@x.com", "Secret123").Code)
	_, cookies := env.login(t, "ana", "Secret123")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/users/current-user", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized request", decode(t, rec).Message)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/users/current-user", nil), cookies[middleware.AccessTokenCookie])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"username":"ana"`)

	req := httptest.NewRequest(http.MethodGet, "/users/current-user", nil)
	req.Header.Set("Authorization", "Bearer "+cookies[middleware.AccessTokenCookie].Value)
	assert.Equal(t, http.StatusOK, env.do(req).Code)
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, http.StatusCreated, env.register(t, "ana", "a@x.com", "Secret123").Code)
	_, cookies := env.login(t, "ana", "Secret123")
	oldRefresh := cookies[RefreshTokenCookie]

	rec := env.do(httptest.NewRequest(http.MethodPost, "/users/refresh-token", nil), oldRefresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		rotated[c.Name] = c
	}
	require.Contains(t, rotated, RefreshTokenCookie)
	assert.NotEqual(t, oldRefresh.Value, rotated[RefreshTokenCookie].Value)

	// The superseded token no longer works.
	rec = env.do(httptest.NewRequest(http.MethodPost, "/users/refresh-token", nil), oldRefresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The rotated token is also accepted from a JSON body.
	rec = env.do(jsonRequest(http.MethodPost, "/users/refresh-token",
		`{"refreshToken":"`+rotated[RefreshTokenCookie].Value+`"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session sessionResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &session))

	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
		assert.True(t, c.Secure)
		assert.True(t, c.HttpOnly)
	}

	rec = env.do(jsonRequest(http.MethodPost, "/users/refresh-token",
		`{"refreshToken":"`+session.RefreshToken+`"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_MissingToken(t *testing.T) {
	env := newTestEnv()
	rec := env.do(httptest.NewRequest(http.MethodPost, "/users/refresh-token", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTweets_OwnershipAndExistence(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, http.StatusCreated, env.register(t, "ana", "a@x.com", "Secret123").Code)
	require.Equal(t, http.StatusCreated, env.register(t, "bob", "b@x.com", "Secret123").Code)
	_, ana := env.login(t, "ana", "Secret123")
	_, bob := env.login(t, "bob", "Secret123")

	rec := env.do(jsonRequest(http.MethodPost, "/tweets", `{"content":"hello"}`), ana[middleware.AccessTokenCookie])
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tweet struct {
		ID    string `json:"_id"`
		Owner string `json:"owner"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &tweet))

	rec = env.do(jsonRequest(http.MethodPatch, "/tweets/"+tweet.ID, `{"content":"hijack"}`), bob[middleware.AccessTokenCookie])
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(jsonRequest(http.MethodDelete, "/tweets/"+strings.Repeat("a", 24), ""), ana[middleware.AccessTokenCookie])
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(jsonRequest(http.MethodDelete, "/tweets/not-an-id", ""), ana[middleware.AccessTokenCookie])
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Mixed-case hex names the same document.
	rec = env.do(jsonRequest(http.MethodPatch, "/tweets/"+strings.ToUpper(tweet.ID), `{"content":"edited"}`), ana[middleware.AccessTokenCookie])
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(decode(t, rec).Data), "edited")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/tweets/user/"+tweet.Owner, nil), bob[middleware.AccessTokenCookie])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), "edited")
}

func TestHealthcheck(t *testing.T) {
	env := newTestEnv()
	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	env.h.Health = pingFunc(func(context.Context) error { return errors.New("no primary") })
	rec = env.do(httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Database unavailable", decode(t, rec).Message)
}

func TestPageParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=500", nil)
	p, err := pageParams(req)
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.Page)
	assert.EqualValues(t, 100, p.Limit)

	_, err = pageParams(httptest.NewRequest(http.MethodGet, "/?page=0", nil))
	assert.Error(t, err)

	for _, huge := range []string{"1000001", "9000000000000000000"} {
		_, err = pageParams(httptest.NewRequest(http.MethodGet, "/?page="+huge, nil))
		require.Error(t, err, huge)
		assert.True(t, apperr.Is(err, apperr.KindValidation), huge)
	}

	p, err = pageParams(httptest.NewRequest(http.MethodGet, "/?page=1000000&limit=100", nil))
	require.NoError(t, err)
	assert.Positive(t, p.Skip())
}
