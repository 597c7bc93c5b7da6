// internal/workers/recommendation/rank-insurance/config.go
package rankinsurance

import (
	"time"

	"cotiza-workers/internal/ranking"
)

type Config struct {
	Timeout       time.Duration
	MaxResults    int
	CacheTTL      time.Duration
	SlowThreshold time.Duration
	Ranker        *ranking.InsuranceRanker
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		MaxResults:    10,
		CacheTTL:      5 * time.Minute,
		SlowThreshold: 500 * time.Millisecond,
		Ranker:        ranking.NewInsuranceRanker(),
	}
}
