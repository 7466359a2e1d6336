package main

import (
	"flag"
	"log"
	"time"

	"github.com/TripShare-io/tripshare/internal/api"
	"github.com/TripShare-io/tripshare/internal/auth"
	"github.com/TripShare-io/tripshare/internal/config"
	"github.com/TripShare-io/tripshare/internal/database"
	"github.com/TripShare-io/tripshare/internal/storage"
	"github.com/TripShare-io/tripshare/internal/store"
)

const version = "0.1.0"

func initializeAPI(configPath string) (*api.Api, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	images, err := newImageStorage(cfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	a, err := api.NewApi(*cfg, store.New(db, cfg.Database.Type), tokens, images)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
	return a, cleanup, nil
}

func newImageStorage(cfg *config.Config) (storage.ImageStorage, error) {
	if cfg.Uploads.Backend == "s3" {
		return storage.NewS3Storage(
			cfg.Uploads.S3.Endpoint,
			cfg.Uploads.S3.Region,
			cfg.Uploads.S3.Bucket,
			cfg.Uploads.S3.AccessKeyID,
			cfg.Uploads.S3.SecretAccessKey,
		)
	}
	return storage.NewLocalStorage(cfg.Uploads.Dir)
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting TripShare API v%s with config: %s", version, *configPath)

	a, cleanup, err := initializeAPI(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	a.Serve()
}
