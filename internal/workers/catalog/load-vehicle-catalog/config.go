// internal/workers/catalog/load-vehicle-catalog/config.go
package loadvehiclecatalog

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
