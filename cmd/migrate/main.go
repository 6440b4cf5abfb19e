package main

import (
	"errors"
	"fmt"
	"github.com/ariefcatur/erp-lite/internal/postgres"
	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const versionTimeFormat = "20060102150405"

func main() {
	_ = godotenv.Load()

	var dsn string
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "manage the erp-lite database schema",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "postgres connection URL (default $POSTGRES_DSN)")

	rootCmd.AddCommand(
		upCommand(&dsn),
		downCommand(&dsn),
		versionCommand(&dsn),
		createCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func open(dsn string) (*migrate.Migrate, error) {
	if dsn == "" {
		return nil, errors.New("no database: set --dsn or POSTGRES_DSN")
	}
	return postgres.NewMigrator(dsn)
}

func upCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "migrate all the way up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(*dsn)
			if err != nil {
				return err
			}
			defer m.Close()

			err = m.Up()
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("No change in migration")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println("Migrated up")
			return nil
		},
	}
}

func downCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "down [steps]",
		Short: "roll back the given number of migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			m, err := open(*dsn)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Steps(-steps); err != nil {
				return err
			}
			fmt.Printf("Rolled back %d migration(s)\n", steps)
			return nil
		},
	}
}

func versionCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(*dsn)
			if err != nil {
				return err
			}
			defer m.Close()

			v, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("No migrations applied")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	}
}

func createCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "create empty up/down sql migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := time.Now().UTC().Format(versionTimeFormat)
			base := filepath.Join(dir, fmt.Sprintf("%s_%s", version, args[0]))
			for _, suffix := range []string{".up.sql", ".down.sql"} {
				if err := os.WriteFile(base+suffix, []byte{}, 0o644); err != nil {
					return err
				}
				fmt.Println("Created", base+suffix)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "internal/postgres/migrations", "migrations directory")
	return cmd
}
