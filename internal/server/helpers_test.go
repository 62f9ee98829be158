package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pantry/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []uint
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"single", "3", []uint{3}, false},
		{"several", "1,2,3", []uint{1, 2, 3}, false},
		{"blanks skipped", "1,,2, ", []uint{1, 2}, false},
		{"spaces trimmed", " 4 , 5", []uint{4, 5}, false},
		{"not a number", "1,abc", nil, true},
		{"zero", "0", nil, true},
		{"negative", "-1", nil, true},
		{"decimal", "1.5", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDList(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"1", "true", "TRUE", "yes", "On"} {
		v, err := parseBool(raw)
		require.NoError(t, err, raw)
		assert.True(t, v, raw)
	}
	for _, raw := range []string{"", "0", "false", "No", "off"} {
		v, err := parseBool(raw)
		require.NoError(t, err, raw)
		assert.False(t, v, raw)
	}
	_, err := parseBool("maybe")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Token abc", "abc"},
		{"token abc", "abc"},
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, extractToken(tt.header))
		})
	}
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.NewValidationError("bad"), http.StatusBadRequest},
		{"weak credential", models.NewWeakCredentialError("short"), http.StatusBadRequest},
		{"invalid image", models.NewInvalidImageError("nope"), http.StatusBadRequest},
		{"auth", models.NewAuthError(), http.StatusUnauthorized},
		{"unauthorized", models.NewUnauthorizedError("who"), http.StatusUnauthorized},
		{"not found", models.NewNotFoundError("Recipe", 1), http.StatusNotFound},
		{"method", models.NewMethodNotAllowedError("POST"), http.StatusMethodNotAllowed},
		{"internal", models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapServiceError(tt.err))
		})
	}
}

func TestRespondServiceErrorHidesCause(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondServiceError(c, errors.New("pq: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body models.ErrorResponse
	require.NoError(t, decodeBody(resp, &body))
	assert.Equal(t, models.CodeInternal, body.Code)
	assert.NotContains(t, body.Error, "connection refused")
}

func TestParseIDRejectsNonPositive(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	for _, raw := range []string{"0", "-2", "abc"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+raw, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, raw)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/7", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
