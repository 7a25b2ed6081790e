package main

import (
	"fmt"
	"strconv"

	"contextual/internal/platform/config"
	"contextual/internal/platform/store/migrations"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or inspect the embedded schema migrations",
	Long: `Run the embedded migrations against SERVICE_PGSQL_DBURL.

Examples:
  contextual-ctl migrate up
  contextual-ctl migrate down 1
  contextual-ctl migrate version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(func(m *migrations.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations, one step by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("steps must be a number: %w", err)
			}
			steps = n
		}
		return withMigrator(func(m *migrations.Migrator) error {
			if err := m.Down(steps); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(printVersion)
	},
}

func withMigrator(fn func(*migrations.Migrator) error) error {
	url := config.New().Prefix("SERVICE_PGSQL_").MustString("DBURL")
	m, err := migrations.Open(url)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return fn(m)
}

func printVersion(m *migrations.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	state := color.GreenString("clean")
	if dirty {
		state = color.YellowString("dirty")
	}
	fmt.Printf("schema version %d (%s)\n", v, state)
	return nil
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
