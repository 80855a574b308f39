// Command migrate runs schema operations for the backend.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"warbler/internal/config"
	"warbler/internal/database"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|status|drop>")
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

	// Connect migrates on open, so status and drop use a raw session.
	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("schema up to date")
	case "status":
		return status(db)
	case "drop":
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to drop tables in production")
		}
		return drop(db)
	default:
		return usage()
	}
	return nil
}

func status(db *gorm.DB) error {
	for _, m := range database.PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return fmt.Errorf("parse model: %w", err)
		}
		state := "missing"
		if db.Migrator().HasTable(m) {
			state = "present"
		}
		log.Printf("%-10s %s", stmt.Schema.Table, state)
	}
	return nil
}

func drop(db *gorm.DB) error {
	models := database.PersistentModels()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	log.Println("all tables dropped")
	return nil
}
