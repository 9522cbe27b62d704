package dbmigrate

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fdg312/meal-e/migrations"
)

var commands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
}

// IsSupportedCommand reports whether Run accepts the goose command.
func IsSupportedCommand(command string) bool {
	return commands[command]
}

// Run applies a goose command using the embedded migrations.
func Run(command string, dbURL string, logger *zap.Logger) error {
	return RunFS(command, dbURL, migrations.FS, logger)
}

func RunFS(command string, dbURL string, fsys fs.FS, logger *zap.Logger) error {
	if !IsSupportedCommand(command) {
		return fmt.Errorf("unsupported migrate command %q", command)
	}
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Run(command, db, "."); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	sugar *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}
