package server

import (
	"errors"
	"io"
	"path"
	"strings"

	"pantry/internal/models"
	"pantry/internal/service"
	"pantry/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadRecipeImage handles POST /api/recipe/recipes/:id/upload-image
// @Summary Upload a recipe image
// @Description Multipart field "image". Replaces and removes any previous image.
// @Tags recipe
// @Accept multipart/form-data
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param image formData file true "Image file (JPEG, PNG, GIF or WebP)"
// @Success 200 {object} RecipeImageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/recipes/{id}/upload-image [post]
func (s *Server) UploadRecipeImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidImageError("No file was submitted."))
	}
	if file.Size > s.imageService.MaxUploadSizeBytes() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidImageError("File too large"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidImageError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(io.LimitReader(src, s.imageService.MaxUploadSizeBytes()+1))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidImageError("Unable to read uploaded file"))
	}

	recipe, err := s.imageService.SetRecipeImage(c.UserContext(), currentUserID(c), id, service.UploadInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(RecipeImageResponse{ID: recipe.ID, Image: s.mediaSigner.URL(recipe.Image)})
}

// ServeMedia handles GET /media/* for signed image URLs.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	key, err := storage.CleanKey(c.Params("*"))
	if err != nil || !strings.HasPrefix(key, service.RecipeImageDir+"/") {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Media", c.Params("*")))
	}
	if err := s.mediaSigner.Verify(key, c.Query("sig")); err != nil {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("Invalid or expired media signature"))
	}

	rc, err := s.store.Open(c.UserContext(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Media", key))
		}
		return respondServiceError(c, models.NewInternalError(err))
	}

	c.Type(strings.TrimPrefix(path.Ext(key), "."))
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.SendStream(rc)
}
