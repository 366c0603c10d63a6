package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	Brokers     []string

	// OwnerAddress manages the airdrop verifier registry.
	OwnerAddress string

	MinVoteStake  uint64
	VotingWindow  time.Duration
	ContestWindow time.Duration

	OutboxRelayInterval    time.Duration
	ExpirySweepInterval    time.Duration
	EnableOutboxRelay      bool
	EnableExpiryWatchman   bool
	EnableSwaggerRoute     bool
	EnableRequestRateLimit bool
}

func Load() (Config, error) {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "quinty"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("EVENT_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		Brokers:     brokers,

		OwnerAddress: strings.TrimSpace(os.Getenv("OWNER_ADDRESS")),

		MinVoteStake:  envUint("MIN_VOTE_STAKE", 1),
		VotingWindow:  envDuration("VOTING_WINDOW", 72*time.Hour),
		ContestWindow: envDuration("CONTEST_WINDOW", 168*time.Hour),

		OutboxRelayInterval:    envDuration("OUTBOX_RELAY_INTERVAL", 5*time.Second),
		ExpirySweepInterval:    envDuration("EXPIRY_SWEEP_INTERVAL", time.Minute),
		EnableOutboxRelay:      envBool("ENABLE_OUTBOX_RELAY", true),
		EnableExpiryWatchman:   envBool("ENABLE_EXPIRY_WATCHMAN", true),
		EnableSwaggerRoute:     envBool("ENABLE_SWAGGER_ROUTE", true),
		EnableRequestRateLimit: envBool("ENABLE_REQUEST_RATE_LIMIT", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envUint(name string, fallback uint64) uint64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
