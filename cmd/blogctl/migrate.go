package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/geocoder89/blogapi/internal/db"
	"github.com/spf13/cobra"
)

var downSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *db.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(m, "migrated to")
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (all of them unless --steps is given)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *db.Migrator) error {
			if err := m.Down(downSteps); err != nil {
				return err
			}
			return printVersion(m, "rolled back to")
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied migration version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *db.Migrator) error {
			return printVersion(m, "schema at")
		})
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 0, "number of migrations to roll back (0 = all)")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	RootCmd.AddCommand(migrateCmd)
}

func withMigrator(fn func(m *db.Migrator) error) error {
	if cfg.DBURL == "" {
		return fmt.Errorf("no database configured: set DATABASE_URL or DB_* variables")
	}

	m, err := db.NewMigrator(cfg.DBURL)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

func printVersion(m *db.Migrator, label string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}

	if dirty {
		fmt.Println(color.New(color.FgYellow).Sprintf("! %s version %d (dirty)", label, version))
		return nil
	}

	success("%s version %d", label, version)
	return nil
}
