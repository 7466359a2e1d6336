package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 24, cfg.JWT.TTLHours)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "local", cfg.Uploads.Backend)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
	assert.NotEmpty(t, cfg.JWT.Secret)
}

func TestLoadConfig_File(t *testing.T) {
	configData := `
apiPort: 9090
jwt:
  secret: file-secret
  ttlHours: 12
database:
  type: postgres
  host: db.internal
  port: "5432"
  user: tripshare
  name: tripshare
uploads:
  backend: s3
  s3:
    region: fra1
    bucket: tripshare-images
`
	path := filepath.Join(t.TempDir(), "app.yml")
	require.NoError(t, os.WriteFile(path, []byte(configData), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 12, cfg.JWT.TTLHours)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "s3", cfg.Uploads.Backend)
	assert.Equal(t, "tripshare-images", cfg.Uploads.S3.Bucket)

	// Defaults still fill unspecified fields.
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")
	require.NoError(t, os.WriteFile(path, []byte("apiPort: [not an int\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
