package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	APIBaseURL     string        `env:"ACADEMY_API_URL,         default=http://localhost:8080"`
	LogLevel       string        `env:"ACADEMY_LOG_LEVEL,       default=info"`
	RequestTimeout time.Duration `env:"ACADEMY_REQUEST_TIMEOUT, default=15s"`
	VerifyTimeout  time.Duration `env:"ACADEMY_VERIFY_TIMEOUT,  default=10s"`
	CacheTTL       time.Duration `env:"ACADEMY_CACHE_TTL,       default=30s"`

	// ProjectionStore selects where the identity projection is persisted:
	// file, redis or memory.
	ProjectionStore string `env:"ACADEMY_PROJECTION_STORE, default=file"`
	StateDir        string `env:"ACADEMY_STATE_DIR"`
	Seat            string `env:"ACADEMY_SEAT"`

	Redis RedisConfig

	Serve ServeConfig
}

type RedisConfig struct {
	Addr string `env:"ACADEMY_REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"ACADEMY_REDIS_DB,   default=0"`
}

// ServeConfig configures the local reference backend started by
// `academyctl serve`.
type ServeConfig struct {
	Port      string `env:"ACADEMY_SERVE_PORT, default=8080"`
	JWTSecret string `env:"ACADEMY_SERVE_JWT_SECRET, default=dev-only-secret"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(log zerolog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		panic(err)
	}
	return &cfg
}
