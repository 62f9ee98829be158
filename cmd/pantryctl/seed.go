package main

import (
	"fmt"

	"pantry/internal/seed"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var (
		users       int
		recipes     int
		fixturePath string
		randomSeed  int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo users and recipes",
		Long: `Generates random accounts with tags, ingredients and recipes. With
--fixture, the YAML file is applied first. Generated accounts use the
password "` + seed.DefaultPassword + `".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fixture *seed.Fixture
			if fixturePath != "" {
				var err error
				if fixture, err = seed.LoadFixture(fixturePath); err != nil {
					return err
				}
			}

			_, db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			seeder := seed.NewSeeder(db, randomSeed)
			out := cmd.OutOrStdout()
			if fixture != nil {
				sum, err := seeder.Apply(cmd.Context(), fixture)
				if err != nil {
					return fmt.Errorf("apply fixture: %w", err)
				}
				fmt.Fprintf(out, "fixture: %d users, %d tags, %d ingredients, %d recipes\n",
					sum.Users, sum.Tags, sum.Ingredients, sum.Recipes)
			}
			if users > 0 {
				sum, err := seeder.Random(cmd.Context(), seed.Options{Users: users, RecipesPerUser: recipes})
				if err != nil {
					return fmt.Errorf("random seed: %w", err)
				}
				fmt.Fprintf(out, "random: %d users, %d tags, %d ingredients, %d recipes\n",
					sum.Users, sum.Tags, sum.Ingredients, sum.Recipes)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 5, "Number of random users to create")
	cmd.Flags().IntVar(&recipes, "recipes", 4, "Recipes per random user")
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "YAML fixture file to apply")
	cmd.Flags().Int64Var(&randomSeed, "seed", 0, "Random seed for reproducible data (0 = random)")
	return cmd
}
