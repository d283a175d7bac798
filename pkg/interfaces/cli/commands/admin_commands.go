package commands

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/infrastructure/repositories/sqlite"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sqlite.Open(cmd.Context(), a.config.Database.Driver, a.config.Database.Path, a.logger)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date: %s\n", db.Path())
			return nil
		},
	}
}

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var username, password, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account with any role, including Administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := entities.ParseRole(role)
			if err != nil {
				return fmt.Errorf("invalid role %q (valid: %s)", role, entities.RoleList())
			}
			generated := password == ""
			if generated {
				password = strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
			}
			if len(password) < a.config.Limits.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters long", a.config.Limits.MinPasswordLength)
			}

			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			user, err := rt.Services.Auth.CreateUser(cmd.Context(), strings.TrimSpace(username), password, r)
			if err != nil {
				return err
			}
			a.logger.Info("user created", zap.String("username", user.Username), zap.String("role", string(user.Role)))
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", user.Username, user.Role)
			if generated {
				fmt.Fprintf(cmd.OutOrStdout(), "Generated password: %s\n", password)
			}
			return nil
		},
	}
	create.Flags().StringVarP(&username, "username", "u", "", "account name")
	create.Flags().StringVarP(&password, "password", "p", "", "account password (generated when empty)")
	create.Flags().StringVarP(&role, "role", "r", string(entities.Administrator), "account role")
	_ = create.MarkFlagRequired("username")

	cmd.AddCommand(create)
	return cmd
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.opts.ConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := a.config.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
