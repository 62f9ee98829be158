package server

import (
	"pantry/internal/models"

	"github.com/gofiber/fiber/v2"
)

type nameRequest struct {
	Name *string `json:"name" form:"name"`
}

// parseName reads {"name": ...}; a missing name is reported as a field error.
func parseName(c *fiber.Ctx) (string, error) {
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
		return "", errResponseWritten
	}
	if req.Name == nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldValidationError("name", "This field is required."))
		return "", errResponseWritten
	}
	return *req.Name, nil
}

// ListTags handles GET /api/recipe/tags
// @Summary List the caller's tags
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Param assigned_only query string false "Only tags used by a recipe (1/0, true/false)"
// @Success 200 {array} models.Tag
// @Failure 400 {object} models.ErrorResponse
// @Router /recipe/tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	assignedOnly, err := queryBool(c, "assigned_only")
	if err != nil {
		return nil
	}
	tags, err := s.tagService.List(c.UserContext(), currentUserID(c), assignedOnly)
	if err != nil {
		return respondServiceError(c, err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return c.JSON(tags)
}

// CreateTag handles POST /api/recipe/tags
// @Summary Create a tag
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body object{name=string} true "Tag"
// @Success 201 {object} models.Tag
// @Failure 400 {object} models.ErrorResponse
// @Router /recipe/tags [post]
func (s *Server) CreateTag(c *fiber.Ctx) error {
	name, err := parseName(c)
	if err != nil {
		return nil
	}
	tag, err := s.tagService.Create(c.UserContext(), currentUserID(c), name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// UpdateTag handles PATCH/PUT /api/recipe/tags/:id
// @Summary Rename a tag
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Tag ID"
// @Param request body object{name=string} true "Tag"
// @Success 200 {object} models.Tag
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/tags/{id} [patch]
func (s *Server) UpdateTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	name, err := parseName(c)
	if err != nil {
		return nil
	}
	tag, err := s.tagService.Update(c.UserContext(), currentUserID(c), id, name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tag)
}

// DeleteTag handles DELETE /api/recipe/tags/:id
// @Summary Delete a tag
// @Tags recipe
// @Security TokenAuth
// @Param id path int true "Tag ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/tags/{id} [delete]
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.tagService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
