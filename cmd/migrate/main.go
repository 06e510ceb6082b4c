package main

import (
	"flag"
	"log"

	"hookd/internal/platform/config"
	"hookd/internal/platform/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	switch *direction {
	case "up":
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration complete")
	case "down":
		for _, table := range []string{"audit_logs", "dead_letters", "delivery_logs", "api_keys", "webhooks"} {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				log.Fatalf("Failed to drop %s: %v", table, err)
			}
		}
		log.Println("Rollback complete")
	default:
		log.Fatalf("Unknown direction: %s", *direction)
	}
}
