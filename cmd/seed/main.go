// Command main runs the database seeder for Icarus.
package main

import (
	"context"
	"flag"
	"log"

	"icarus/internal/config"
	"icarus/internal/database"
	"icarus/internal/seed"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of fake users to create")
	postsPerUser := flag.Int("posts", 10, "Number of posts per fake user")
	demoOnly := flag.Bool("demo", false, "Only seed the demo account")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	seeded, err := seed.Demo(ctx, db, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Demo seeding failed: %v", err)
	}
	if seeded {
		log.Println("Demo account ready: demo@icarus.art / demo1234")
	}
	if *demoOnly {
		return
	}

	f, err := seed.NewFactory(db, seed.Options{Seed: *randSeed})
	if err != nil {
		log.Fatalf("Failed to build factory: %v", err)
	}
	summary, err := f.Populate(ctx, *numUsers, *postsPerUser)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d posts, %d likes, %d bookmarks",
		summary.Users, summary.Posts, summary.Likes, summary.Bookmarks)
	log.Printf("All fake users have the password: %s", seed.FakePassword)
}
