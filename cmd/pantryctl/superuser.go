package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"pantry/internal/bootstrap"
	"pantry/internal/config"
	"pantry/internal/repository"
	"pantry/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const superuserPasswordEnv = "PANTRY_SUPERUSER_PASSWORD"

// readPassword and isTerminal are replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func newCreateSuperuserCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff superuser account",
		Long: `Creates a superuser. The password comes from --password, then the
` + superuserPasswordEnv + ` environment variable, then an interactive prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := resolvePassword(password, os.Getenv(superuserPasswordEnv), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rt, err := bootstrap.InitRuntime(cmd.Context(), cfg, bootstrap.Options{SkipStorage: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			users := service.NewUserService(repository.NewUserRepository(rt.DB), repository.NewTokenRepository(rt.DB), nil)
			user, err := users.CreateSuperuser(cmd.Context(), email, pw)
			if err != nil {
				return fmt.Errorf("create superuser: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address of the new superuser")
	cmd.Flags().StringVar(&password, "password", "", "Password (prefer "+superuserPasswordEnv+" or the prompt)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// resolvePassword picks the flag value, then the environment value, then
// prompts twice on the terminal without echo.
func resolvePassword(flagValue, envValue string, w io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if envValue != "" {
		return envValue, nil
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", fmt.Errorf("no password given: use --password or %s", superuserPasswordEnv)
	}

	fmt.Fprint(w, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(w, "Password (again): ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("password may not be blank")
	}
	return string(first), nil
}
