// internal/workers/leads/send-lead-notification/config.go
package sendleadnotification

import "time"

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SalesTeam    []string
	// SMSMinScore is the lowest lead score that also gets an SMS.
	SMSMinScore int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: true,
		SMSEnabled:   false,
		FromEmail:    "cotizaciones@cotiza.cl",
		SMSMinScore:  70,
	}
}
