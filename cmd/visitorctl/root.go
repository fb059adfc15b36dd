package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"visitorreg/internal/platform/config"
	"visitorreg/internal/platform/database"
	"visitorreg/internal/platform/health"
)

func execute() int {
	root := newRootCmd(os.Stdout)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(out io.Writer) *cobra.Command {
	var databaseURL string

	root := &cobra.Command{
		Use:           "visitorctl",
		Short:         "Operate the visitor register",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (defaults to the configured DATABASE_URL)")

	openDB := func(ctx context.Context) (*database.Pool, error) {
		cfg, err := config.FromEnv()
		if err != nil {
			return nil, err
		}
		if databaseURL != "" {
			cfg.Database.URL = databaseURL
		}
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("no database configured: set DATABASE_URL or --database-url")
		}
		return database.New(ctx, database.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Minute,
		})
	}

	root.AddCommand(newMigrateCmd(openDB), newConfigCmd(), newVersionCmd())
	return root
}

type dbOpener func(ctx context.Context) (*database.Pool, error)

func newMigrateCmd(openDB dbOpener) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withDB := func(fn func(cmd *cobra.Command, pool *database.Pool) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			pool, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close() //nolint:errcheck // process exits right after
			return fn(cmd, pool)
		}
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, pool *database.Pool) error {
				if err := database.Migrate(cmd.Context(), pool.DB()); err != nil {
					return err
				}
				return printVersion(cmd, pool)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, pool *database.Pool) error {
				if err := database.Rollback(cmd.Context(), pool.DB()); err != nil {
					return err
				}
				return printVersion(cmd, pool)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE:  withDB(printVersion),
		},
	)
	return migrate
}

func printVersion(cmd *cobra.Command, pool *database.Pool) error {
	v, err := database.Version(cmd.Context(), pool.DB())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
	return err
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			cfg.Database.URL = redactURL(cfg.Database.URL)
			cfg.Redis.URL = redactURL(cfg.Redis.URL)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "visitorctl %s\n", health.Version)
			return err
		},
	}
}
