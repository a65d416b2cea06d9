package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/platform/config"
	"github.com/ogurasousui/staffboard/internal/platform/logger"
)

var cli struct {
	Config string `help:"Path to config file." default:"assets/local.yaml" env:"CONFIG_PATH" type:"path"`
	Dir    string `help:"Directory containing migration files." default:"assets/migrations" type:"path"`
	Debug  bool   `help:"Enable debug logging."`

	Up      struct{} `cmd:"" default:"1" help:"Apply all pending migrations."`
	Down    struct{} `cmd:"" help:"Roll back all migrations."`
	Drop    struct{} `cmd:"" help:"Drop everything in the database."`
	Version struct{} `cmd:"" help:"Print the current migration version."`
	Steps   struct {
		N int `arg:"" help:"Number of migrations to apply (negative to roll back)."`
	} `cmd:"" help:"Apply or roll back n migrations."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("migrate"),
		kong.Description("Manage the staffboard database schema."),
	)
	log := logger.Setup(cli.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	action := ctx.Command()
	if err := runMigration(action, cli.Dir, cfg.Database.DSN(), log); err != nil {
		log.Fatal().Err(err).Str("action", action).Msg("migration failed")
	}

	log.Info().Str("action", action).Msg("migration completed")
}

func runMigration(action, dir, dsn string, log zerolog.Logger) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "drop":
		return m.Drop()
	case "steps <n>":
		return ignoreNoChange(m.Steps(cli.Steps.N))
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Info().Msg("no migration applied")
				return nil
			}
			return err
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("current version")
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
