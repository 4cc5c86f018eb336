// Command migrate applies the schema of every persistent model.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"icarus/internal/config"
	"icarus/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("migrations applied")
	case "status":
		if err := database.Ping(context.Background(), db); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		for _, m := range database.PersistentModels() {
			log.Printf("%T present=%t", m, db.Migrator().HasTable(m))
		}
	default:
		return usage()
	}
	return nil
}
