// Command migrate applies the database schema. It is idempotent: the
// schema file only uses IF NOT EXISTS forms, so re-running is safe.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"diario/pkg/config"
	"diario/pkg/database"
)

func main() {
	configPath := flag.String("config", "./configs/development.yaml", "path to config file")
	schemaPath := flag.String("schema", "./scripts/schema.sql", "path to schema file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("Failed to read schema %s: %v", *schemaPath, err)
	}

	db, err := database.NewDB(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
		Timeout:  cfg.Database.Timeout.Std(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(string(schema)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	fmt.Println("Schema applied successfully")
}
