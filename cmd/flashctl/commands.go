package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appMigrations "github.com/yigit/flashclass/internal/app/migrations"
	appModels "github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/bootstrap"
	"github.com/yigit/flashclass/internal/config"
	"github.com/yigit/flashclass/internal/db"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "flashctl",
		Short:         "Flashclass administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "path to the YAML config file")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newCreateAdminCmd(opts),
		newSetRoleCmd(opts),
		newMaterialsCmd(opts),
	)
	return cmd
}

// withDeps loads config, opens the store and builds the service graph for one command
func withDeps(ctx context.Context, opts *rootOptions, fn func(*bootstrap.Dependencies) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts.configPath)
	if err != nil {
		return err
	}
	store, err := bootstrap.OpenStore(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer store.Close()

	deps, err := bootstrap.BuildDependencies(cfg, store, lgr)
	if err != nil {
		return err
	}
	return fn(deps)
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema",
	}

	run := func(action func(context.Context, *appMigrations.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts.configPath)
			if err != nil {
				return err
			}
			if cfg.Store.Backend != config.StorePostgres {
				return fmt.Errorf("migrations only apply to the postgres backend, configured %q", cfg.Store.Backend)
			}
			return migrate(cmd.Context(), cfg, lgr, action)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: run(func(ctx context.Context, m *appMigrations.Migrator) error {
				return m.Up(ctx)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: run(func(ctx context.Context, m *appMigrations.Migrator) error {
				return m.Down(ctx)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: run(func(ctx context.Context, m *appMigrations.Migrator) error {
				return m.Status(ctx)
			}),
		},
	)
	return cmd
}

func migrate(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, action func(context.Context, *appMigrations.Migrator) error) error {
	pool, err := db.NewPostgresPool(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator := appMigrations.NewMigrator(pool, lgr)
	defer migrator.Close()
	return action(ctx, migrator)
}

func newCreateAdminCmd(opts *rootOptions) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an account with the admin role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cmd.Context(), opts, func(deps *bootstrap.Dependencies) error {
				user, err := deps.AuthService.CreateAccount(cmd.Context(), name, email, password, appModels.RoleAdmin)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSetRoleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <user|admin>",
		Short: "Set the role of an account directly in the store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := appModels.RoleType(args[1])
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", args[1])
			}
			return withDeps(cmd.Context(), opts, func(deps *bootstrap.Dependencies) error {
				user, err := deps.Repos.UserRepository.GetByEmail(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := deps.Repos.UserRepository.SetRole(cmd.Context(), user.ID, role); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", user.Email, user.Role, role)
				return nil
			})
		},
	}
}

func newMaterialsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "materials <classID>",
		Short: "List the flashcards a class resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), opts, func(deps *bootstrap.Dependencies) error {
				class, cards, err := deps.MaterialsService.ResolveClassMaterialsByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printMaterials(cmd.OutOrStdout(), class, cards)
			})
		},
	}
}

func printMaterials(w io.Writer, class *appModels.Class, cards []appModels.Flashcard) error {
	fmt.Fprintf(w, "%s (%s): %d references, %d cards\n", class.Name, class.ID, class.MaterialCount(), len(cards))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFOLDER\tTITLE")
	for _, c := range cards {
		folder := "-"
		if c.FolderID != nil {
			folder = *c.FolderID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, folder, c.Title)
	}
	return tw.Flush()
}
