package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration for a grading run. It is constructed
// once at startup and passed explicitly into the services; no grading logic
// reads the environment on its own.
type Config struct {
	APIKey              string        `validate:"-"`
	Model               string        `validate:"required"`
	MaxOutputTokens     int           `validate:"gt=0"`
	Temperature         float32       `validate:"gte=0,lte=2"`
	ConfidenceThreshold float64       `validate:"gte=0,lte=1"`
	MaxRetries          int           `validate:"gte=0"`
	BatchSize           int           `validate:"gte=1"`
	BatchDelay          time.Duration `validate:"gte=0"`
	InterCallDelay      time.Duration `validate:"gte=0"`
	OutputDir           string        `validate:"required"`
}

// APIKeyIssue reports a problem with the configured key that is worth a
// startup warning: missing entirely, or padded with whitespace (a common
// copy-paste mistake). The returned key is the trimmed value to use.
func (c Config) APIKeyIssue() string {
	switch {
	case c.APIKey == "":
		return "no API key configured; live grading runs will fail"
	case strings.TrimSpace(c.APIKey) != c.APIKey:
		return "API key has leading or trailing whitespace"
	default:
		return ""
	}
}

// Load reads configuration from an optional settings file, environment
// variables (GRADER_ prefix), and an optional .env file, in ascending
// precedence of env over file.
func Load(settingsFile string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("model", "gpt-5-mini")
	v.SetDefault("max_output_tokens", 2000)
	v.SetDefault("temperature", 0.0)
	v.SetDefault("confidence_threshold", 0.7)
	v.SetDefault("max_retries", 2)
	v.SetDefault("batch.size", 20)
	v.SetDefault("batch.delay", "5s")
	v.SetDefault("batch.inter_call_delay", "500ms")
	v.SetDefault("output_dir", "outputs")

	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read settings file %s: %w", settingsFile, err)
		}
	}

	batchDelay, err := time.ParseDuration(v.GetString("batch.delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid batch delay: %w", err)
	}

	interCallDelay, err := time.ParseDuration(v.GetString("batch.inter_call_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid inter-call delay: %w", err)
	}

	apiKey := v.GetString("openai_api_key")
	if apiKey == "" {
		// Respect the conventional variable name as a fallback.
		_ = v.BindEnv("fallback_openai_api_key", "OPENAI_API_KEY")
		apiKey = v.GetString("fallback_openai_api_key")
	}

	cfg := Config{
		APIKey:              apiKey,
		Model:               v.GetString("model"),
		MaxOutputTokens:     v.GetInt("max_output_tokens"),
		Temperature:         float32(v.GetFloat64("temperature")),
		ConfidenceThreshold: v.GetFloat64("confidence_threshold"),
		MaxRetries:          v.GetInt("max_retries"),
		BatchSize:           v.GetInt("batch.size"),
		BatchDelay:          batchDelay,
		InterCallDelay:      interCallDelay,
		OutputDir:           v.GetString("output_dir"),
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
