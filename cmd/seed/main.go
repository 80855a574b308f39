// Command seed populates the configured database with demo data.
package main

import (
	"flag"
	"log"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numMessages := flag.Int("messages", 400, "Number of messages to create")
	follows := flag.Int("follows", 8, "Follow edges per user")
	likes := flag.Int("likes", 15, "Likes per user")
	maxDays := flag.Int("days", 90, "Spread message timestamps over this many days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build data without writing it")
	randSeed := flag.Int64("rand-seed", 0, "Random seed (0 picks one)")
	preset := flag.String("preset", "", "Apply a named preset (ignores count flags)")
	presetFile := flag.String("preset-file", "", "YAML file to read presets from instead of the built-ins")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	opts := seed.Options{
		Users:          *numUsers,
		Messages:       *numMessages,
		FollowsPerUser: *follows,
		LikesPerUser:   *likes,
		MaxDays:        *maxDays,
		Clean:          *shouldClean,
		DryRun:         *dryRun,
		RandSeed:       *randSeed,
	}
	if *preset != "" {
		p, err := seed.LoadPreset(*presetFile, *preset)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		p.DryRun = p.DryRun || *dryRun
		opts = p
		log.Printf("Applying preset: %s\n", *preset)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if _, err := seed.NewSeeder(db, opts).Run(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
