// Command seed fills the database with demo posts, comments and accounts.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"newsdesk/internal/config"
	"newsdesk/internal/database"
	"newsdesk/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 10, "Number of random users to create")
	numPosts := flag.Int("posts", 50, "Number of random posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per random post")
	maxDays := flag.Int("days", 90, "Spread random posts over this many past days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build data without writing it")
	fast := flag.Bool("fast", false, "Hash passwords at minimum cost")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	fixturePath := flag.String("fixture", "", "YAML fixture file (defaults to the built-in one)")
	noFixture := flag.Bool("no-fixture", false, "Skip the fixture and create random data only")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	opts := seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxComments: *maxComments,
		MaxDays:     *maxDays,
		ShouldClean: *shouldClean,
		DryRun:      *dryRun,
		Fast:        *fast,
		RandSeed:    *randSeed,
	}
	if !*noFixture {
		fx, err := loadFixture(*fixturePath)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
		opts.Fixture = fx
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

	sum, err := seed.Seed(context.Background(), db, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d tags, %d posts, %d comments", sum.Users, sum.Tags, sum.Posts, sum.Comments)
	log.Printf("Random users log in with the password: %s", seed.DemoPassword)
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.DefaultFixture()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return seed.LoadFixture(f)
}
