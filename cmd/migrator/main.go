package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"click-collect/pkg/database"
	"click-collect/pkg/utils"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	configFlag        = "config"
	migrationPathFlag = "migrations-path"
	directionFlag     = "direction"
)

// migrationLogger adapts zap to migrate.Logger.
type migrationLogger struct {
	log     *zap.SugaredLogger
	verbose bool
}

func (ml *migrationLogger) Printf(format string, v ...any) {
	ml.log.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (ml *migrationLogger) Verbose() bool {
	return ml.verbose
}

func main() {
	configPath := pflag.StringP(configFlag, "c", ".env", "path to the env config file")
	migrationsPath := pflag.StringP(migrationPathFlag, "m", "migrations", "directory holding the *.sql migrations")
	direction := pflag.StringP(directionFlag, "d", "up", "up or down")
	verbose := pflag.BoolP("verbose", "v", false, "log every migration step")
	pflag.Parse()

	if *direction != "up" && *direction != "down" {
		fmt.Fprintf(os.Stderr, "--%s flag: must be up or down\n", directionFlag)
		os.Exit(2)
	}

	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(config.Database, *migrationsPath, *direction, &migrationLogger{log: logger.Sugar(), verbose: *verbose}); err != nil {
		logger.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(config utils.DatabaseConfig, migrationsPath, direction string, ml *migrationLogger) error {
	// the pgx/v5 driver registers itself under the pgx5 scheme
	dsn := "pgx5" + strings.TrimPrefix(database.ConnString(config), "postgres")

	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			ml.Printf("close migrate: source=%v database=%v", srcErr, dbErr)
		}
	}()

	m.Log = ml

	if direction == "down" {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		ml.Printf("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	ml.Printf("migrations applied (%s)", direction)
	return nil
}
