package internal

import (
	"fmt"
	"time"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL,default=INFO"`
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`

	// Broadcast plumbing
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=5s"`
	ToastDurationMs int           `env:"TOAST_DURATION_MS,default=4000"`

	// Presence
	TypingExpiry time.Duration `env:"TYPING_EXPIRY,default=1500ms"`

	// Execution gateway
	ProviderURL      string        `env:"PROVIDER_URL,required=true"`
	ProviderToken    string        `env:"PROVIDER_TOKEN"`
	ExecCooldown     time.Duration `env:"EXEC_COOLDOWN,default=3s"`
	ExecTimeout      time.Duration `env:"EXEC_TIMEOUT,default=20s"`
	ExecRetryDelay   time.Duration `env:"EXEC_RETRY_DELAY,default=1s"`
	ExecMaxAttempts  int           `env:"EXEC_MAX_ATTEMPTS,default=3"`
	LanguagesPath    string        `env:"LANGUAGES_PATH"`

	// Moderation
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	// Observability
	MetricInterval time.Duration `env:"METRIC_INTERVAL,default=30s"`
	DebugPort      int           `env:"DEBUG_PORT,default=8081"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
