package server

import (
	"encoding/json"
	"errors"

	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/service"

	"github.com/gofiber/fiber/v2"
)

type recipeRequest struct {
	Title       *string       `json:"title"`
	TimeMinutes *int          `json:"time_minutes"`
	Price       *models.Price `json:"price"`
	Link        *string       `json:"link"`
	Tags        *[]uint       `json:"tags"`
	Ingredients *[]uint       `json:"ingredients"`
}

// parseRecipeRequest decodes the body, reporting decode problems against the offending field.
func parseRecipeRequest(c *fiber.Ctx) (service.RecipeInput, error) {
	var req recipeRequest
	if err := c.BodyParser(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, models.ErrInvalidPrice):
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewFieldValidationError("price", err.Error()))
		case errors.As(err, &typeErr) && typeErr.Field != "":
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewFieldValidationError(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+"."))
		default:
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		return service.RecipeInput{}, errResponseWritten
	}
	return service.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.Tags,
		IngredientIDs: req.Ingredients,
	}, nil
}

// ListRecipes handles GET /api/recipe/recipes
// @Summary List the caller's recipes
// @Description Newest first. IDs within tags or ingredients are ORed; the two filters are ANDed.
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Param tags query string false "Comma-separated tag IDs"
// @Param ingredients query string false "Comma-separated ingredient IDs"
// @Success 200 {array} RecipeListItem
// @Failure 400 {object} models.ErrorResponse
// @Router /recipe/recipes [get]
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	tagIDs, err := queryIDs(c, "tags")
	if err != nil {
		return nil
	}
	ingredientIDs, err := queryIDs(c, "ingredients")
	if err != nil {
		return nil
	}

	recipes, err := s.recipeService.List(c.UserContext(), currentUserID(c), repository.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	items := make([]RecipeListItem, 0, len(recipes))
	for i := range recipes {
		items = append(items, toRecipeListItem(s.mediaSigner, &recipes[i]))
	}
	return c.JSON(items)
}

// CreateRecipe handles POST /api/recipe/recipes
// @Summary Create a recipe
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body object{title=string,time_minutes=int,price=string,link=string,tags=[]int,ingredients=[]int} true "Recipe"
// @Success 201 {object} RecipeDetail
// @Failure 400 {object} models.ErrorResponse
// @Router /recipe/recipes [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	in, err := parseRecipeRequest(c)
	if err != nil {
		return nil
	}
	recipe, err := s.recipeService.Create(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toRecipeDetail(s.mediaSigner, recipe))
}

// GetRecipe handles GET /api/recipe/recipes/:id
// @Summary Recipe detail
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/recipes/{id} [get]
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	recipe, err := s.recipeService.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toRecipeDetail(s.mediaSigner, recipe))
}

// UpdateRecipe handles PUT /api/recipe/recipes/:id
// @Summary Replace a recipe
// @Description Omitted link, tags and ingredients are cleared.
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param request body object{title=string,time_minutes=int,price=string,link=string,tags=[]int,ingredients=[]int} true "Recipe"
// @Success 200 {object} RecipeDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/recipes/{id} [put]
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	return s.updateRecipe(c, false)
}

// PatchRecipe handles PATCH /api/recipe/recipes/:id
// @Summary Update parts of a recipe
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param request body object{title=string,time_minutes=int,price=string,link=string,tags=[]int,ingredients=[]int} true "Recipe fields"
// @Success 200 {object} RecipeDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/recipes/{id} [patch]
func (s *Server) PatchRecipe(c *fiber.Ctx) error {
	return s.updateRecipe(c, true)
}

func (s *Server) updateRecipe(c *fiber.Ctx, partial bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	in, err := parseRecipeRequest(c)
	if err != nil {
		return nil
	}
	recipe, err := s.recipeService.Update(c.UserContext(), currentUserID(c), id, in, partial)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toRecipeDetail(s.mediaSigner, recipe))
}

// DeleteRecipe handles DELETE /api/recipe/recipes/:id
// @Summary Delete a recipe and its image
// @Tags recipe
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/recipes/{id} [delete]
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.recipeService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
