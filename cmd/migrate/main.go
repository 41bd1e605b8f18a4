// Command migrate applies the schema and runs one-off maintenance sweeps.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"rehire/internal/config"
	"rehire/internal/database"
	"rehire/internal/maintenance"
	"rehire/internal/repository"
	"rehire/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|sweep>")
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

	// Connect only auto-migrates outside production.
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("schema migrated")
	case "sweep":
		messages := repository.NewMessageRepository(db)
		conversations := repository.NewConversationRepository(db)
		directory := service.NewConversationDirectory(conversations, messages, repository.NewProfileRepository(db))

		sweeper, err := maintenance.NewSweeper(messages, conversations, directory, cfg.MaintenanceCron)
		if err != nil {
			return err
		}
		report, err := sweeper.RunOnce(context.Background())
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}
		log.Printf("sweep reclaimed=%d repaired=%d recomputed=%d",
			report.MessagesReclaimed, report.PointersRepaired, report.CountersRecomputed)
	default:
		return usage()
	}
	return nil
}
