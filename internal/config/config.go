package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidConfig               = errors.New("invalid configuration")
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string        `mapstructure:"env"`           // current application environment (local, dev, production etc)
	TelegramAPIToken string        `mapstructure:"-"`             // Telegram API token loaded from environment
	TickInterval     time.Duration `mapstructure:"tick_interval"` // how often running quizzes are ticked
	SessionTTL       time.Duration `mapstructure:"session_ttl"`   // how long a finished quiz is kept for "play again"
	Quiz             Quiz          `mapstructure:"quiz"`          // quiz engine configuration section
}

// Quiz contains quiz engine parameters.
type Quiz struct {
	Questions        int           `mapstructure:"questions"`          // questions per quiz
	TimerDuration    time.Duration `mapstructure:"timer_duration"`     // countdown per question
	PointsPerCorrect int           `mapstructure:"points_per_correct"` // points for each correct answer
	CorrectDelay     time.Duration `mapstructure:"correct_delay"`      // pause after a correct answer
	IncorrectDelay   time.Duration `mapstructure:"incorrect_delay"`    // pause after a wrong answer or timeout
	Locale           string        `mapstructure:"locale"`             // prompt label set: en or zh-TW
	Seed             int64         `mapstructure:"seed"`               // random seed, 0 means time based
}

// Validate checks the quiz section for values the engine cannot run with.
func (q Quiz) Validate() error {
	switch {
	case q.Questions <= 0:
		return fmt.Errorf("%w: quiz.questions must be positive, got %d", ErrInvalidConfig, q.Questions)
	case q.TimerDuration <= 0:
		return fmt.Errorf("%w: quiz.timer_duration must be positive, got %s", ErrInvalidConfig, q.TimerDuration)
	case q.PointsPerCorrect <= 0:
		return fmt.Errorf("%w: quiz.points_per_correct must be positive, got %d", ErrInvalidConfig, q.PointsPerCorrect)
	case q.CorrectDelay < 0 || q.IncorrectDelay < 0:
		return fmt.Errorf("%w: quiz delays must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("tick_interval", "1s")
	v.SetDefault("session_ttl", "30m")
	v.SetDefault("quiz.questions", 4)
	v.SetDefault("quiz.timer_duration", "15s")
	v.SetDefault("quiz.points_per_correct", 25)
	v.SetDefault("quiz.correct_delay", "800ms")
	v.SetDefault("quiz.incorrect_delay", "700ms")
	v.SetDefault("quiz.locale", "en")
	v.SetDefault("quiz.seed", 0)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Quiz.Validate(); err != nil {
		return nil, err
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("%w: tick_interval must be positive, got %s", ErrInvalidConfig, cfg.TickInterval)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("%w: session_ttl must be positive, got %s", ErrInvalidConfig, cfg.SessionTTL)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
