package server

import (
	"pantry/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListIngredients handles GET /api/recipe/ingredients
// @Summary List the caller's ingredients
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Param assigned_only query string false "Only ingredients used by a recipe"
// @Success 200 {array} models.Ingredient
// @Failure 400 {object} models.ErrorResponse
// @Router /recipe/ingredients [get]
func (s *Server) ListIngredients(c *fiber.Ctx) error {
	assignedOnly, err := queryBool(c, "assigned_only")
	if err != nil {
		return nil
	}
	ingredients, err := s.ingredientService.List(c.UserContext(), currentUserID(c), assignedOnly)
	if err != nil {
		return respondServiceError(c, err)
	}
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}
	return c.JSON(ingredients)
}

// CreateIngredient handles POST /api/recipe/ingredients
// @Summary Create an ingredient
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body object{name=string} true "Ingredient"
// @Success 201 {object} models.Ingredient
// @Failure 400 {object} models.ErrorResponse
// @Router /recipe/ingredients [post]
func (s *Server) CreateIngredient(c *fiber.Ctx) error {
	name, err := parseName(c)
	if err != nil {
		return nil
	}
	ingredient, err := s.ingredientService.Create(c.UserContext(), currentUserID(c), name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ingredient)
}

// UpdateIngredient handles PATCH/PUT /api/recipe/ingredients/:id
// @Summary Rename an ingredient
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Ingredient ID"
// @Param request body object{name=string} true "Ingredient"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/ingredients/{id} [patch]
func (s *Server) UpdateIngredient(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	name, err := parseName(c)
	if err != nil {
		return nil
	}
	ingredient, err := s.ingredientService.Update(c.UserContext(), currentUserID(c), id, name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(ingredient)
}

// DeleteIngredient handles DELETE /api/recipe/ingredients/:id
// @Summary Delete an ingredient
// @Tags recipe
// @Security TokenAuth
// @Param id path int true "Ingredient ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/ingredients/{id} [delete]
func (s *Server) DeleteIngredient(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.ingredientService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
