package main

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/onlineshop/backend/internal/app"
	"github.com/onlineshop/backend/internal/config"
	"github.com/spf13/cobra"
)

const pathFlag = "path"

var migrateFlags = map[string]cobraflags.Flag{
	pathFlag: &cobraflags.StringFlag{
		Name:  pathFlag,
		Value: "",
		Usage: "Directory with SQL migrations (defaults to MIGRATIONS_PATH)",
	},
}

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply or revert database migrations",
		Long: `Apply or revert the SQL migrations of the shop schema.

Examples:
  onlineshop migrate up                       # Apply pending migrations
  onlineshop migrate down --path ./migrations # Revert every migration`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{app.MigrateUp, app.MigrateDown},
		RunE:      migrateCommand,
	}

	cobraflags.RegisterMap(migrateCmd, migrateFlags)
	return migrateCmd
}

func migrateCommand(cmd *cobra.Command, args []string) error {
	direction := args[0]
	if direction != app.MigrateUp && direction != app.MigrateDown {
		return fmt.Errorf("unknown migration direction %q, expected up or down", direction)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path := cfg.MigrationsPath
	if p := migrateFlags[pathFlag].GetString(); p != "" {
		path = p
	}

	db, err := app.ConnectDB(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := app.RunMigrations(db, path, direction); err != nil {
		return err
	}

	cmd.Printf("migrations %s applied from %s\n", direction, path)
	return nil
}
