package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string
	StripeSecretKey   string
	Redis             RedisConfig
	ForwardedIPHeader string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	Admission         AdmissionLimits
}

// RedisConfig holds connection settings for the shared counter store.
// An empty URL means Redis is not configured and the in-memory store is used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AdmissionLimits configures the fixed-window limits applied per request.
// Both limits share one window; the email limit is checked first.
type AdmissionLimits struct {
	EmailMaxAttempts int
	IPMaxAttempts    int
	Window           time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PAYGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Deployment platforms disagree on the name of their trusted forwarded-IP
	// header, so it is configurable. X-Forwarded-For is always consulted first.
	forwardedHeader := os.Getenv("PAYGATE_FORWARDED_IP_HEADER")
	if forwardedHeader == "" {
		forwardedHeader = "X-Client-Connection-IP"
	}

	return Server{
		Addr:              addr,
		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
		ForwardedIPHeader: forwardedHeader,
		RequestTimeout:    durationFromEnv("PAYGATE_REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:   durationFromEnv("PAYGATE_SHUTDOWN_TIMEOUT", 10*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intFromEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intFromEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationFromEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationFromEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationFromEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Admission: AdmissionLimits{
			EmailMaxAttempts: intFromEnv("PAYGATE_EMAIL_MAX_ATTEMPTS", 5),
			IPMaxAttempts:    intFromEnv("PAYGATE_IP_MAX_ATTEMPTS", 10),
			Window:           durationFromEnv("PAYGATE_LIMIT_WINDOW", time.Hour),
		},
	}
}

func intFromEnv(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
