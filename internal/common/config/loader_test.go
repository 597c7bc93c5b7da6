package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cotiza-workers/internal/ranking"
)

const baseYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: cotiza
    user: cotiza
  redis:
    address: localhost:6379
  elasticsearch:
    addresses:
      - http://localhost:9200
apis:
  valuation:
    base_url: ${TEST_VALUATION_URL}
ranking:
  monthly_rate: 0.015
  vehicle_weights:
    body_type: 0.4
workers:
  rank-vehicles:
    enabled: true
    timeout: 15000
  search-vehicles:
    enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_VALUATION_URL", "https://valuation.example.cl")
	t.Setenv("VALUATION_API_KEY", "secret")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://valuation.example.cl", cfg.APIs.Valuation.BaseURL)
	assert.Equal(t, "secret", cfg.APIs.Valuation.APIKey)

	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, 5432, cfg.Database.Postgres.Port)
		assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
		assert.Equal(t, "vehicles", cfg.Database.Elasticsearch.VehicleIndex)
		assert.Equal(t, 10, cfg.Ranking.MaxResults)
		assert.Equal(t, 5*time.Minute, GetDuration(cfg.Ranking.CacheTTL))
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "cotiza-workers", cfg.Observability.ServiceName)
	})

	t.Run("worker settings", func(t *testing.T) {
		w := GetWorkerConfig(cfg, "rank-vehicles")
		assert.True(t, w.Enabled)
		assert.Equal(t, 15000, w.Timeout)
		assert.Equal(t, 5, w.MaxJobsActive)
		assert.Equal(t, 3, w.MaxRetries)

		assert.False(t, IsWorkerEnabled(cfg, "search-vehicles"))
		assert.True(t, IsWorkerEnabled(cfg, "create-lead"))
		assert.Equal(t, 30000, GetWorkerConfig(cfg, "create-lead").Timeout)
	})

	t.Run("ranking overrides merge over defaults", func(t *testing.T) {
		vr := cfg.Ranking.VehicleRanker()
		assert.Equal(t, 0.015, vr.Terms.MonthlyRate)
		assert.Equal(t, ranking.DefaultTermMonths, vr.Terms.Months)
		assert.Equal(t, 0.4, vr.Weights.BodyType)
		assert.Equal(t, ranking.VehicleBudgetCashWeight, vr.Weights.BudgetCash)

		assert.Equal(t, ranking.DefaultInsuranceWeights(), cfg.Ranking.InsuranceRanker().Weights)
	})
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing broker",
			content: "database:\n  postgres:\n    host: h\n",
			errMsg:  "camunda.broker_address is required",
		},
		{
			name: "search enabled without elasticsearch",
			content: `
camunda: {broker_address: "localhost:26500"}
database:
  postgres: {host: h, database: d, user: u}
  redis: {address: "localhost:6379"}
apis:
  valuation: {base_url: "http://v"}
`,
			errMsg: "database.elasticsearch.addresses is required",
		},
		{
			name: "valuation enabled without url",
			content: `
camunda: {broker_address: "localhost:26500"}
database:
  postgres: {host: h, database: d, user: u}
  redis: {address: "localhost:6379"}
workers:
  search-vehicles: {enabled: false}
`,
			errMsg: "apis.valuation.base_url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
