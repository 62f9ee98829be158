package service

import (
	"context"
	"os"
	"testing"

	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	passwordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	db      *gorm.DB
	store   *testutil.MemoryStorage
	users   *UserService
	tokens  *TokenService
	tags    *TagService
	ings    *IngredientService
	recipes *RecipeService
	images  *ImageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := testutil.NewMemoryStorage()

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)

	users := NewUserService(userRepo, tokenRepo, store)
	return &fixture{
		db:      db,
		store:   store,
		users:   users,
		tokens:  NewTokenService(users, userRepo, tokenRepo),
		tags:    NewTagService(repository.NewTagRepository(db)),
		ings:    NewIngredientService(repository.NewIngredientRepository(db)),
		recipes: NewRecipeService(recipeRepo, store),
		images:  NewImageService(recipeRepo, store, NewImagePathGenerator(nil), nil),
	}
}

func (f *fixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), RegisterInput{Email: email, Password: "testpass123", Name: "Test"})
	require.NoError(t, err)
	return user
}

func ptr[T any](v T) *T {
	return &v
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, models.IsCode(err, code), "expected %s, got %v", code, err)
}
