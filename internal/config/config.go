package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all traceval configuration.
type Config struct {
	// TracePath points at a captured trace file; empty means stdin.
	TracePath string `env:"TRACEVAL_TRACE"`

	Backend BackendConfig
	Sink    SinkConfig
	Expect  ExpectConfig
	Logging LogConfig
}

// BackendConfig selects the agent source and, when invoking it directly,
// the command template and timeout.
type BackendConfig struct {
	Name    string        `env:"TRACEVAL_BACKEND" envDefault:"claude"`
	Command string        `env:"TRACEVAL_BACKEND_CMD"`
	Args    []string      `env:"TRACEVAL_BACKEND_ARGS" envSeparator:" "`
	Timeout time.Duration `env:"TRACEVAL_BACKEND_TIMEOUT" envDefault:"5m"`
}

// SinkConfig selects the result destination.
type SinkConfig struct {
	Kind      string `env:"TRACEVAL_SINK" envDefault:"stdout"` // stdout, file, webhook
	Path      string `env:"TRACEVAL_SINK_PATH" envDefault:"results.ndjson"`
	URL       string `env:"TRACEVAL_SINK_URL"`
	Pretty    bool   `env:"TRACEVAL_PRETTY"`
	Verbosity string `env:"TRACEVAL_VERBOSITY" envDefault:"standard"`
}

// ExpectConfig declares the test-case expectation when running standalone.
type ExpectConfig struct {
	ShouldTrigger bool   `env:"TRACEVAL_EXPECT_TRIGGER" envDefault:"true"`
	ExpectedTools string `env:"TRACEVAL_EXPECTED_TOOLS"`
	Category      string `env:"TRACEVAL_CATEGORY"`
	SecurityFocus bool   `env:"TRACEVAL_SECURITY_FOCUS"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `env:"TRACEVAL_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables. A .env file is
// loaded first when present, for local development.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
