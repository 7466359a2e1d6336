package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	APIPort     int      `mapstructure:"apiPort"`
	CORSOrigins []string `mapstructure:"corsOrigins"`
	JWT         struct {
		Secret   string `mapstructure:"secret"`
		TTLHours int    `mapstructure:"ttlHours"`
	} `mapstructure:"jwt"`
	Database struct {
		Type     string `mapstructure:"type"` // "sqlite" or "postgres"
		Path     string `mapstructure:"path"` // sqlite only
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslMode"`
		MaxConns int    `mapstructure:"maxConns"`
		MaxIdle  int    `mapstructure:"maxIdle"`
	} `mapstructure:"database"`
	Uploads struct {
		Backend string `mapstructure:"backend"` // "local" or "s3"
		Dir     string `mapstructure:"dir"`
		S3      struct {
			Endpoint        string `mapstructure:"endpoint"`
			Region          string `mapstructure:"region"`
			Bucket          string `mapstructure:"bucket"`
			AccessKeyID     string `mapstructure:"accessKeyID"`
			SecretAccessKey string `mapstructure:"secretAccessKey"`
		} `mapstructure:"s3"`
	} `mapstructure:"uploads"`
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// With an explicit config file path a missing file surfaces as an
		// fs error rather than ConfigFileNotFoundError.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Printf("Warning: Could not read config file: %s. Using defaults or environment variables.", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.APIPort == 0 {
		cfg.APIPort = 8080
		log.Println("apiPort not specified, using default 8080")
	}

	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "your-secret-key-change-in-production"
		log.Println("jwt.secret not specified, using insecure development default")
	}
	if cfg.JWT.TTLHours == 0 {
		cfg.JWT.TTLHours = 24
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
		log.Println("Database type not specified, using sqlite")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/tripshare.db"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Uploads.Backend == "" {
		cfg.Uploads.Backend = "local"
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "uploads"
	}

	return &cfg, nil
}
