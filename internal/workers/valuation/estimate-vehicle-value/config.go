// internal/workers/valuation/estimate-vehicle-value/config.go
package estimatevehiclevalue

import "time"

type Config struct {
	Timeout        time.Duration
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        15 * time.Second,
		BaseURL:        "http://localhost:8090",
		RequestTimeout: 5 * time.Second,
		CacheTTL:       24 * time.Hour,
	}
}
