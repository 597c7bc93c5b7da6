// internal/workers/catalog/search-vehicles/config.go
package searchvehicles

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		Index:   "vehicles",
	}
}
