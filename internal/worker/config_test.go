package worker_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guichethq/guichet/internal/worker"
)

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("GUICHET_PROJECT_ID", "guichet-prod")
	t.Setenv("GUICHET_DATABASE_URL", "postgres://guichet:secret@db:5432/guichet")
	t.Setenv("GUICHET_SMTP_HOST", "smtp.guichet.city")

	cfg, err := worker.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "guichet-prod", cfg.ProjectID)
	assert.Equal(t, "postgres://guichet:secret@db:5432/guichet", cfg.DatabaseURL)
	assert.Equal(t, "smtp.guichet.city", cfg.SMTP.Host)

	// Defaults
	assert.Equal(t, "guichet-jobs-sub", cfg.SubscriptionName)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "no-reply@guichet.city", cfg.SMTP.From)
	assert.Equal(t, 3*30*24*time.Hour, cfg.Retention.ArchiveAge)
	assert.Equal(t, 30*24*time.Hour, cfg.Retention.PurgeAge)
	assert.Equal(t, 30, cfg.Retention.FileSweepDays)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
project_id: guichet-staging
database_url: postgres://guichet@localhost:5432/guichet
subscription_name: staging-jobs-sub
smtp:
  host: mail.staging.guichet.city
  port: 2525
retention:
  file_sweep_days: 14
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "worker.yaml"), []byte(contents), 0o600))

	cfg, err := worker.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "guichet-staging", cfg.ProjectID)
	assert.Equal(t, "staging-jobs-sub", cfg.SubscriptionName)
	assert.Equal(t, "mail.staging.guichet.city", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, 14, cfg.Retention.FileSweepDays)
}

func TestLoadConfig_MissingProjectID(t *testing.T) {
	t.Setenv("GUICHET_DATABASE_URL", "postgres://guichet@localhost:5432/guichet")

	_, err := worker.LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project_id")
}

func TestLoadConfig_MissingDatabaseURL(t *testing.T) {
	t.Setenv("GUICHET_PROJECT_ID", "guichet-prod")

	_, err := worker.LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")
}
