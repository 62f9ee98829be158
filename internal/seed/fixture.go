package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"pantry/internal/models"
	"pantry/internal/service"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set, usually loaded from YAML:
//
//	users:
//	  - email: chef@example.com
//	    password: secret123
//	    tags: [Vegan]
//	    recipes:
//	      - title: Tofu bowl
//	        time_minutes: 20
//	        price: "7.50"
//	        tags: [Vegan]
//	        ingredients: [Tofu, Rice]
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
}

// FixtureUser is one account and its catalog.
type FixtureUser struct {
	Email       string          `yaml:"email"`
	Password    string          `yaml:"password"`
	Name        string          `yaml:"name"`
	Tags        []string        `yaml:"tags"`
	Ingredients []string        `yaml:"ingredients"`
	Recipes     []FixtureRecipe `yaml:"recipes"`
}

// FixtureRecipe refers to tags and ingredients by name. Names not listed
// on the user are created on first use.
type FixtureRecipe struct {
	Title       string   `yaml:"title"`
	TimeMinutes int      `yaml:"time_minutes"`
	Price       string   `yaml:"price"`
	Link        string   `yaml:"link"`
	Tags        []string `yaml:"tags"`
	Ingredients []string `yaml:"ingredients"`
}

// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture parses YAML fixture data. Unknown keys are rejected.
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for i, u := range fx.Users {
		if strings.TrimSpace(u.Email) == "" {
			return nil, fmt.Errorf("fixture user %d: email is required", i+1)
		}
		for _, r := range u.Recipes {
			if _, err := models.ParsePrice(r.Price); err != nil {
				return nil, fmt.Errorf("fixture recipe %q: %w", r.Title, err)
			}
		}
	}
	return &fx, nil
}

// Apply creates everything in fx. Existing accounts are reused, so applying
// the same fixture twice adds the catalog again but not the users.
func (s *Seeder) Apply(ctx context.Context, fx *Fixture) (Summary, error) {
	var sum Summary
	for _, fu := range fx.Users {
		password := fu.Password
		if password == "" {
			password = DefaultPassword
		}
		user, created, err := s.ensureUser(ctx, fu.Email, password, fu.Name)
		if err != nil {
			return sum, err
		}
		if created {
			sum.Users++
		}

		tags := newNameIndex()
		ings := newNameIndex()
		for _, name := range fu.Tags {
			if _, err := s.tagID(ctx, user.ID, tags, name, &sum); err != nil {
				return sum, err
			}
		}
		for _, name := range fu.Ingredients {
			if _, err := s.ingredientID(ctx, user.ID, ings, name, &sum); err != nil {
				return sum, err
			}
		}

		for _, fr := range fu.Recipes {
			tagIDs := make([]uint, 0, len(fr.Tags))
			for _, name := range fr.Tags {
				id, err := s.tagID(ctx, user.ID, tags, name, &sum)
				if err != nil {
					return sum, err
				}
				tagIDs = append(tagIDs, id)
			}
			ingIDs := make([]uint, 0, len(fr.Ingredients))
			for _, name := range fr.Ingredients {
				id, err := s.ingredientID(ctx, user.ID, ings, name, &sum)
				if err != nil {
					return sum, err
				}
				ingIDs = append(ingIDs, id)
			}

			price, err := models.ParsePrice(fr.Price)
			if err != nil {
				return sum, fmt.Errorf("recipe %q: %w", fr.Title, err)
			}
			title, minutes, link := fr.Title, fr.TimeMinutes, fr.Link
			if _, err := s.recipes.Create(ctx, user.ID, service.RecipeInput{
				Title:         &title,
				TimeMinutes:   &minutes,
				Price:         &price,
				Link:          &link,
				TagIDs:        &tagIDs,
				IngredientIDs: &ingIDs,
			}); err != nil {
				return sum, fmt.Errorf("create recipe %q: %w", fr.Title, err)
			}
			sum.Recipes++
		}
	}
	return sum, nil
}

// nameIndex maps case-folded names to IDs created during one Apply.
type nameIndex map[string]uint

func newNameIndex() nameIndex {
	return make(nameIndex)
}

func (s *Seeder) tagID(ctx context.Context, ownerID uint, idx nameIndex, name string, sum *Summary) (uint, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := idx[key]; ok {
		return id, nil
	}
	tag, err := s.tags.Create(ctx, ownerID, name)
	if err != nil {
		return 0, fmt.Errorf("create tag %q: %w", name, err)
	}
	idx[key] = tag.ID
	sum.Tags++
	return tag.ID, nil
}

func (s *Seeder) ingredientID(ctx context.Context, ownerID uint, idx nameIndex, name string, sum *Summary) (uint, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := idx[key]; ok {
		return id, nil
	}
	ing, err := s.ings.Create(ctx, ownerID, name)
	if err != nil {
		return 0, fmt.Errorf("create ingredient %q: %w", name, err)
	}
	idx[key] = ing.ID
	sum.Ingredients++
	return ing.ID, nil
}
