package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"pantry/internal/config"
	"pantry/internal/models"
	"pantry/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var emailSeq atomic.Int64

// testAPI wraps a fully wired app backed by SQLite and in-memory storage.
type testAPI struct {
	t     *testing.T
	app   *fiber.App
	srv   *Server
	db    *gorm.DB
	store *testutil.MemoryStorage
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := testutil.NewMemoryStorage()
	cfg := &config.Config{
		Port:                 "0",
		Env:                  "test",
		ImageMaxUploadSizeMB: 1,
		MediaURLSecret:       "test-media-url-secret",
		MediaURLTTLMinutes:   60,
	}
	srv, err := NewServerWithDeps(cfg, db, nil, store)
	require.NoError(t, err)
	return &testAPI{t: t, app: srv.NewApp(), srv: srv, db: db, store: store}
}

func (a *testAPI) send(req *http.Request, token string) (*http.Response, []byte) {
	a.t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Token "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, data
}

// do sends a JSON request. A nil body sends no body.
func (a *testAPI) do(method, target, token string, body any) (*http.Response, []byte) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return a.send(req, token)
}

// upload posts content as the multipart "image" field.
func (a *testAPI) upload(target, token, filename string, content []byte) (*http.Response, []byte) {
	a.t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(a.t, err)
		_, err = part.Write(content)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return a.send(req, token)
}

// signup registers a fresh account and returns its token.
func (a *testAPI) signup() string {
	a.t.Helper()
	email := fmt.Sprintf("user%d@example.com", emailSeq.Add(1))
	resp, _ := a.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": email, "password": "testpass123", "name": "Test User",
	})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)

	resp, data := a.do(http.MethodPost, "/api/user/token", "", map[string]string{
		"email": email, "password": "testpass123",
	})
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	return decodeJSON[TokenResponse](a.t, data).Token
}

// createTag creates a tag and returns its ID.
func (a *testAPI) createTag(token, name string) uint {
	a.t.Helper()
	resp, data := a.do(http.MethodPost, "/api/recipe/tags", token, map[string]string{"name": name})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, string(data))
	return decodeJSON[models.Tag](a.t, data).ID
}

func (a *testAPI) createIngredient(token, name string) uint {
	a.t.Helper()
	resp, data := a.do(http.MethodPost, "/api/recipe/ingredients", token, map[string]string{"name": name})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, string(data))
	return decodeJSON[models.Ingredient](a.t, data).ID
}

func (a *testAPI) createRecipe(token string, body map[string]any) RecipeDetail {
	a.t.Helper()
	payload := map[string]any{"title": "Sample recipe", "time_minutes": 10, "price": "5.50"}
	for k, v := range body {
		payload[k] = v
	}
	resp, data := a.do(http.MethodPost, "/api/recipe/recipes", token, payload)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, string(data))
	return decodeJSON[RecipeDetail](a.t, data)
}

func decodeJSON[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func decodeBody(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
