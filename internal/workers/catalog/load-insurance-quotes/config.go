// internal/workers/catalog/load-insurance-quotes/config.go
package loadinsurancequotes

import "time"

type Config struct {
	Timeout time.Duration
	// RequirePremiums fails the job when the vehicle has no priced product.
	RequirePremiums bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		RequirePremiums: false,
	}
}
