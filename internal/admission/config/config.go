package config

import "time"

// Config holds the fixed-window limits applied to each payment submission.
// Both scopes share the same window length; the email limit is evaluated
// first and each limit can independently reject.
type Config struct {
	EmailMaxAttempts int
	IPMaxAttempts    int
	Window           time.Duration
}

// DefaultConfig returns the product limits: 5 submissions per email per hour
// and 10 per IP per hour.
func DefaultConfig() *Config {
	return &Config{
		EmailMaxAttempts: 5,
		IPMaxAttempts:    10,
		Window:           time.Hour,
	}
}
