// internal/common/config/config.go
package config

import (
	"fmt"

	"cotiza-workers/internal/ranking"
)

type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Ranking       RankingConfig           `mapstructure:"ranking"`
	Catalog       CatalogConfig           `mapstructure:"catalog"`
	APIs          APIsConfig              `mapstructure:"apis"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name         string `mapstructure:"name"`
	Version      string `mapstructure:"version"`
	Environment  string `mapstructure:"environment"`
	HealthPort   int    `mapstructure:"health_port"`
	RegistryPath string `mapstructure:"registry_path"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	VehicleIndex string   `mapstructure:"vehicle_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// RankingConfig tunes the recommendation workers. Zero weights keep the
// built-in defaults.
type RankingConfig struct {
	MonthlyRate      float64                   `mapstructure:"monthly_rate"`
	TermMonths       int                       `mapstructure:"term_months"`
	MaxResults       int                       `mapstructure:"max_results"`
	CacheTTL         int                       `mapstructure:"cache_ttl"`      // milliseconds
	SlowThreshold    int                       `mapstructure:"slow_threshold"` // milliseconds
	VehicleWeights   *ranking.VehicleWeights   `mapstructure:"vehicle_weights"`
	InsuranceWeights *ranking.InsuranceWeights `mapstructure:"insurance_weights"`
}

// VehicleRanker builds a ranker with the configured terms and weights.
func (r RankingConfig) VehicleRanker() *ranking.VehicleRanker {
	vr := ranking.NewVehicleRanker()
	if r.MonthlyRate > 0 {
		vr.Terms.MonthlyRate = r.MonthlyRate
	}
	if r.TermMonths > 0 {
		vr.Terms.Months = r.TermMonths
	}
	vr.Weights = ranking.MergeVehicleWeights(vr.Weights, r.VehicleWeights)
	return vr
}

func (r RankingConfig) InsuranceRanker() *ranking.InsuranceRanker {
	ir := ranking.NewInsuranceRanker()
	ir.Weights = ranking.MergeInsuranceWeights(ir.Weights, r.InsuranceWeights)
	return ir
}

type CatalogConfig struct {
	CacheTTL int `mapstructure:"cache_ttl"` // milliseconds
}

type APIsConfig struct {
	Valuation struct {
		BaseURL  string `mapstructure:"base_url"`
		APIKey   string `mapstructure:"api_key"`
		Timeout  int    `mapstructure:"timeout"`   // milliseconds
		CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds
	} `mapstructure:"valuation"`
}

type NotificationConfig struct {
	Email struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		SalesTeam []string `mapstructure:"sales_team"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool `mapstructure:"enabled"`
		MinScore int  `mapstructure:"min_score"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
