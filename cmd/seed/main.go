// Command seed fills a development database with fake members, jobs and
// conversations.
package main

import (
	"context"
	"flag"
	"log"

	"rehire/internal/config"
	"rehire/internal/database"
	"rehire/internal/middleware"
	"rehire/internal/seed"
)

func main() {
	preset := flag.String("preset", "demo", "Seed preset name")
	presetFile := flag.String("presets", "", "YAML file with custom presets (defaults to the built-in set)")
	clean := flag.Bool("clean", true, "Delete existing data before seeding")
	seedValue := flag.Int64("seed", 0, "Fake data seed (0 picks a random one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	middleware.SetupLogger(cfg.Env)

	p, err := seed.LoadPreset(*preset, *presetFile)
	if err != nil {
		log.Fatalf("Failed to load preset: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{Seed: *seedValue})
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	ctx := context.Background()
	if *clean {
		if err := s.Clear(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	report, err := s.Run(ctx, p)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d hiring posts, %d referrals, %d conversations, %d messages",
		report.Users, report.HiringPosts, report.Referrals, report.Conversations, report.Messages)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
