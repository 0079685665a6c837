package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/config"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/logger"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/persistence"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/persistence/models"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel), 0))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("database", cfg.Database.DBName),
	)

	switch command {
	case "up":
		if err := db.Migrate(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}
		log.Info("Schema is up to date")

	case "status":
		migrator := db.DB.Migrator()
		missing := 0
		for _, model := range models.All() {
			stmt := &gorm.Statement{DB: db.DB}
			if err := stmt.Parse(model); err != nil {
				log.Fatal("Failed to parse model", zap.Error(err))
			}
			exists := migrator.HasTable(model)
			if !exists {
				missing++
			}
			fmt.Printf("  %-24s %v\n", stmt.Schema.Table, exists)
		}
		if missing > 0 {
			log.Warn("Schema has missing tables; run 'migrate up'", zap.Int("missing", missing))
			os.Exit(2)
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Storefront Database Migration Tool

Usage:
  migrate [flags] <command>

Commands:
  up        Create or update the storefront tables
  status    Show which storefront tables exist

Flags:
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  SHOP_DATABASE_HOST, SHOP_DATABASE_PORT, SHOP_DATABASE_USER,
  SHOP_DATABASE_PASSWORD, SHOP_DATABASE_DBNAME, SHOP_DATABASE_SSLMODE`)
}
