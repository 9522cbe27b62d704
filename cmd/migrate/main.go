package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/meal-e/internal/config"
	"github.com/fdg312/meal-e/internal/dbmigrate"
	"github.com/fdg312/meal-e/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/migrate [up|status|down|version]")
		os.Exit(2)
	}

	command := os.Args[1]
	if !dbmigrate.IsSupportedCommand(command) {
		fmt.Fprintf(os.Stderr, "unsupported command %q (allowed: up, status, down, version)\n", command)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}).Named("migrate")
	defer log.Sync()

	dbURL, source, warning, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		log.Fatal("select database", zap.Error(err))
	}

	if warning != "" {
		log.Warn(warning)
	}
	log.Info("migrate", zap.String("command", command), zap.String("using", source))

	if err := dbmigrate.Run(command, dbURL, log); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	log.Info("migrate completed", zap.String("command", command))
}
