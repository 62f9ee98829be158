// Package seed populates a database with demo accounts and recipes for
// development. Data goes through the services so it obeys the same rules as
// API-created data.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/service"
	"pantry/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

// Options controls random seeding.
type Options struct {
	Users int
	// RecipesPerUser recipes are created for each generated user.
	RecipesPerUser int
	// Seed makes the generated data reproducible. Zero picks a random seed.
	Seed int64
}

// Summary counts what a seeding run created.
type Summary struct {
	Users       int
	Tags        int
	Ingredients int
	Recipes     int
}

// Seeder creates users and their catalogs through the application services.
type Seeder struct {
	userRepo repository.UserRepository
	users    *service.UserService
	tags     *service.TagService
	ings     *service.IngredientService
	recipes  *service.RecipeService
	faker    *gofakeit.Faker
}

// NewSeeder wires a Seeder to db. Seeded recipes carry no images, so no
// storage backend is needed.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	faker := gofakeit.New(seed)
	return &Seeder{
		userRepo: userRepo,
		users:    service.NewUserService(userRepo, tokenRepo, nil),
		tags:     service.NewTagService(repository.NewTagRepository(db)),
		ings:     service.NewIngredientService(repository.NewIngredientRepository(db)),
		recipes:  service.NewRecipeService(repository.NewRecipeRepository(db), nil),
		faker:    faker,
	}
}

// Random creates opts.Users accounts, each with a handful of tags and
// ingredients and opts.RecipesPerUser recipes linking them.
func (s *Seeder) Random(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	for i := 0; i < opts.Users; i++ {
		email := fmt.Sprintf("%s.%d@example.com", localPart(s.faker.FirstName()), i+1)
		user, created, err := s.ensureUser(ctx, email, DefaultPassword, s.faker.Name())
		if err != nil {
			return sum, err
		}
		if created {
			sum.Users++
		}

		tagIDs, err := s.createTags(ctx, user.ID, s.uniqueWords(4, s.faker.Adjective), &sum)
		if err != nil {
			return sum, err
		}
		ingIDs, err := s.createIngredients(ctx, user.ID, s.uniqueWords(6, s.faker.Vegetable), &sum)
		if err != nil {
			return sum, err
		}

		for j := 0; j < opts.RecipesPerUser; j++ {
			title := s.faker.Dinner()
			minutes := s.faker.Number(5, 180)
			price := models.NewPrice(int64(s.faker.Number(0, 60)), int64(s.faker.Number(0, 99)))
			link := s.faker.URL()
			tags := s.pick(tagIDs, 2)
			ings := s.pick(ingIDs, 3)
			if _, err := s.recipes.Create(ctx, user.ID, service.RecipeInput{
				Title:         &title,
				TimeMinutes:   &minutes,
				Price:         &price,
				Link:          &link,
				TagIDs:        &tags,
				IngredientIDs: &ings,
			}); err != nil {
				return sum, fmt.Errorf("create recipe for %s: %w", email, err)
			}
			sum.Recipes++
		}
	}

	middleware.Logger.InfoContext(ctx, "seeded random data",
		slog.Int("users", sum.Users),
		slog.Int("tags", sum.Tags),
		slog.Int("ingredients", sum.Ingredients),
		slog.Int("recipes", sum.Recipes),
	)
	return sum, nil
}

// ensureUser returns the account for email, registering it when missing.
func (s *Seeder) ensureUser(ctx context.Context, email, password, name string) (*models.User, bool, error) {
	existing, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	user, err := s.users.Register(ctx, service.RegisterInput{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, false, fmt.Errorf("register %s: %w", email, err)
	}
	return user, true, nil
}

func (s *Seeder) createTags(ctx context.Context, ownerID uint, names []string, sum *Summary) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		tag, err := s.tags.Create(ctx, ownerID, name)
		if err != nil {
			return nil, fmt.Errorf("create tag %q: %w", name, err)
		}
		ids = append(ids, tag.ID)
		sum.Tags++
	}
	return ids, nil
}

func (s *Seeder) createIngredients(ctx context.Context, ownerID uint, names []string, sum *Summary) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		ing, err := s.ings.Create(ctx, ownerID, name)
		if err != nil {
			return nil, fmt.Errorf("create ingredient %q: %w", name, err)
		}
		ids = append(ids, ing.ID)
		sum.Ingredients++
	}
	return ids, nil
}

// uniqueWords draws up to n distinct values from gen.
func (s *Seeder) uniqueWords(n int, gen func() string) []string {
	seen := make(map[string]bool, n)
	words := make([]string, 0, n)
	for attempts := 0; len(words) < n && attempts < n*10; attempts++ {
		w := strings.TrimSpace(gen())
		if w == "" || seen[strings.ToLower(w)] {
			continue
		}
		seen[strings.ToLower(w)] = true
		words = append(words, w)
	}
	return words
}

// pick returns up to n distinct IDs from ids.
func (s *Seeder) pick(ids []uint, n int) []uint {
	if len(ids) == 0 {
		return []uint{}
	}
	shuffled := append([]uint(nil), ids...)
	s.faker.ShuffleAnySlice(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:s.faker.Number(0, n)]
}

// localPart reduces a generated name to plain lowercase letters.
func localPart(name string) string {
	part := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, strings.ToLower(name))
	if part == "" {
		return "user"
	}
	return part
}
