package server

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"pantry/internal/middleware"
	"pantry/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// mapServiceError maps an AppError code to its HTTP status.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation, models.CodeWeakCredential, models.CodeInvalidImage:
		return fiber.StatusBadRequest
	case models.CodeAuthFailed, models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeMethodNotAllowed:
		return fiber.StatusMethodNotAllowed
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status, logging the cause of 5xx responses.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed", slog.String("error", err.Error()))
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(param, "A valid integer is required."))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseIDList parses a comma-separated list of positive integers.
// Blank items are skipped.
func parseIDList(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil || n == 0 {
			return nil, errors.New("Enter a comma-separated list of positive integers.")
		}
		ids = append(ids, uint(n))
	}
	return ids, nil
}

// parseBool parses a query flag. Recognized values are case-insensitive.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	default:
		return false, errors.New("Must be a valid boolean.")
	}
}

// queryIDs reads an ID-list query parameter, writing a 400 response on bad input.
func queryIDs(c *fiber.Ctx, name string) ([]uint, error) {
	ids, err := parseIDList(c.Query(name))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldValidationError(name, err.Error()))
		return nil, errResponseWritten
	}
	return ids, nil
}

// queryBool reads a flag query parameter, writing a 400 response on bad input.
func queryBool(c *fiber.Ctx, name string) (bool, error) {
	v, err := parseBool(c.Query(name))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldValidationError(name, err.Error()))
		return false, errResponseWritten
	}
	return v, nil
}

// MethodNotAllowed rejects verbs a route deliberately does not support.
func (s *Server) MethodNotAllowed(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusMethodNotAllowed, models.NewMethodNotAllowedError(c.Method()))
}
