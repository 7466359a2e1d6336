// Command seed bootstraps the configured database with an admin account
// and, optionally, a few sample vacations for local development.
package main

import (
	"flag"
	"log"

	"github.com/TripShare-io/tripshare/internal/config"
	"github.com/TripShare-io/tripshare/internal/database"
	"github.com/TripShare-io/tripshare/internal/models"
	"github.com/TripShare-io/tripshare/internal/store"
)

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	adminEmail := flag.String("admin-email", "admin@tripshare.local", "Admin account email")
	adminPassword := flag.String("admin-password", "", "Admin account password (required)")
	withSamples := flag.Bool("samples", false, "Also insert sample vacations")
	flag.Parse()

	if *adminPassword == "" {
		log.Fatal("-admin-password is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	st := store.New(db, cfg.Database.Type)

	hash, err := models.HashPassword(*adminPassword)
	if err != nil {
		log.Fatal(err)
	}

	admin := &models.User{
		FirstName: "Admin",
		LastName:  "User",
		Email:     *adminEmail,
		Password:  hash,
		Role:      models.RoleAdmin,
	}
	if err := st.CreateUser(admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Created admin user %s (id %d)", admin.Email, admin.ID)

	if !*withSamples {
		return
	}

	samples := []models.VacationInput{
		{Destination: "Paris", Description: "A week in the city of light.", StartDate: "2027-04-10", EndDate: "2027-04-17", Price: 1450},
		{Destination: "Kyoto", Description: "Temples, gardens and the spring blossom.", StartDate: "2027-03-25", EndDate: "2027-04-05", Price: 2300},
		{Destination: "Lisbon", Description: "Coastal walks and pasteis de nata.", StartDate: "2027-06-01", EndDate: "2027-06-08", Price: 980},
	}
	for _, in := range samples {
		v, err := st.CreateVacation(in, models.DefaultImage)
		if err != nil {
			log.Fatalf("Failed to create sample vacation %s: %v", in.Destination, err)
		}
		log.Printf("Created sample vacation %s (id %d)", v.Destination, v.ID)
	}
}
