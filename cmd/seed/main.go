// Command seed populates the database with demo data.
package main

import (
	"flag"
	"log"

	"tavern/internal/config"
	"tavern/internal/database"
	"tavern/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "number of users to create")
	numCampaigns := flag.Int("campaigns", 60, "number of campaigns to create")
	clean := flag.Bool("clean", false, "delete existing data before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:     *numUsers,
		NumCampaigns: *numCampaigns,
		ShouldClean:  *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
