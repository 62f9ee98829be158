package service

import (
	"context"
	"log/slog"
	"strings"

	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/storage"
	"pantry/internal/validation"
)

const fieldRequired = "This field is required."

// RecipeInput is a recipe write. Nil fields were not supplied by the client.
type RecipeInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *models.Price
	Link          *string
	TagIDs        *[]uint
	IngredientIDs *[]uint
}

type RecipeService struct {
	repo  repository.RecipeRepository
	store storage.Storage
}

func NewRecipeService(repo repository.RecipeRepository, store storage.Storage) *RecipeService {
	return &RecipeService{repo: repo, store: store}
}

func (s *RecipeService) List(ctx context.Context, ownerID uint, filter repository.RecipeFilter) ([]models.Recipe, error) {
	return s.repo.List(ctx, ownerID, filter)
}

func (s *RecipeService) Get(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	return s.repo.GetForOwner(ctx, ownerID, id)
}

func (s *RecipeService) Create(ctx context.Context, ownerID uint, in RecipeInput) (*models.Recipe, error) {
	in, err := normalizeRecipeInput(in, true)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:       *in.Title,
		TimeMinutes: *in.TimeMinutes,
		Price:       *in.Price,
		UserID:      ownerID,
	}
	if in.Link != nil {
		recipe.Link = *in.Link
	}
	var tagIDs, ingredientIDs []uint
	if in.TagIDs != nil {
		tagIDs = *in.TagIDs
	}
	if in.IngredientIDs != nil {
		ingredientIDs = *in.IngredientIDs
	}

	if err := s.repo.Create(ctx, recipe, tagIDs, ingredientIDs); err != nil {
		return nil, err
	}
	return s.repo.GetForOwner(ctx, ownerID, recipe.ID)
}

// Update applies in to the owner's recipe. A partial update touches only the
// supplied fields; a full update also resets an omitted link, tag set and ingredient set.
func (s *RecipeService) Update(ctx context.Context, ownerID, id uint, in RecipeInput, partial bool) (*models.Recipe, error) {
	in, err := normalizeRecipeInput(in, !partial)
	if err != nil {
		return nil, err
	}
	if !partial {
		empty := ""
		if in.Link == nil {
			in.Link = &empty
		}
		if in.TagIDs == nil {
			in.TagIDs = &[]uint{}
		}
		if in.IngredientIDs == nil {
			in.IngredientIDs = &[]uint{}
		}
	}

	changes := repository.RecipeChanges{
		Title:         in.Title,
		TimeMinutes:   in.TimeMinutes,
		Price:         in.Price,
		Link:          in.Link,
		TagIDs:        in.TagIDs,
		IngredientIDs: in.IngredientIDs,
	}
	if err := s.repo.Update(ctx, ownerID, id, changes); err != nil {
		return nil, err
	}
	return s.repo.GetForOwner(ctx, ownerID, id)
}

// Delete removes the owner's recipe and then its image files.
func (s *RecipeService) Delete(ctx context.Context, ownerID, id uint) error {
	recipe, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	removeImageFiles(ctx, s.store, recipe.Image)
	return nil
}

// normalizeRecipeInput trims and validates in, collecting every field problem into one error.
func normalizeRecipeInput(in RecipeInput, requireAll bool) (RecipeInput, error) {
	verr := models.NewValidationError("Invalid recipe")

	if in.Title != nil {
		title, err := validation.ValidateName(*in.Title)
		if err != nil {
			verr.WithField("title", err.Error())
		} else {
			in.Title = &title
		}
	} else if requireAll {
		verr.WithField("title", fieldRequired)
	}

	if in.TimeMinutes != nil {
		if *in.TimeMinutes < 0 {
			verr.WithField("time_minutes", "Ensure this value is greater than or equal to 0.")
		}
	} else if requireAll {
		verr.WithField("time_minutes", fieldRequired)
	}

	if in.Price != nil {
		if err := in.Price.Validate(); err != nil {
			verr.WithField("price", err.Error())
		}
	} else if requireAll {
		verr.WithField("price", fieldRequired)
	}

	if in.Link != nil {
		link := strings.TrimSpace(*in.Link)
		if err := validation.ValidateOptionalLength(link, validation.MaxLinkLength); err != nil {
			verr.WithField("link", err.Error())
		}
		in.Link = &link
	}

	if len(verr.Fields) > 0 {
		return in, verr
	}
	return in, nil
}

// removeImageFiles deletes an image and its thumbnail. Failures are logged, not returned.
func removeImageFiles(ctx context.Context, store storage.Storage, key string) {
	if key == "" || store == nil {
		return
	}
	for _, k := range []string{key, ThumbnailPath(key)} {
		if err := store.Delete(ctx, k); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove image file",
				slog.String("key", k),
				slog.String("error", err.Error()),
			)
		}
	}
}
