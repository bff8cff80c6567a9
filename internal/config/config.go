// Package config provides environment configuration for the API server.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// RotationScope controls where template round-robin cursors live.
type RotationScope string

const (
	// RotationPerSession resets rotation cursors whenever a session's
	// context expires.
	RotationPerSession RotationScope = "session"
	// RotationGlobal keeps one cursor per intent across all sessions.
	RotationGlobal RotationScope = "global"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string        `env:"PORT" envDefault:"8080"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`

	// NATS settings (analytics sink)
	NATSURL      string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSCAFile   string `env:"NATS_CA_FILE"`
	NATSCertFile string `env:"NATS_CERT_FILE"`
	NATSKeyFile  string `env:"NATS_KEY_FILE"`
	NATSToken    string `env:"NATS_TOKEN"`

	// JWT settings
	JWTSecret string `env:"JWT_SECRET" envDefault:"development-secret-change-in-production"`

	// Rate limiting
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"60"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// Understanding pipeline
	MaxMessageLength    int           `env:"MAX_MESSAGE_LENGTH" envDefault:"1000"`
	EscalationThreshold float64       `env:"ESCALATION_CONFIDENCE_THRESHOLD" envDefault:"0.7"`
	IntentFloor         float64       `env:"INTENT_FLOOR_SCORE" envDefault:"0.2"`
	ContinuityBonus     float64       `env:"CONTINUITY_BONUS" envDefault:"1.5"`
	LowConfidenceRepeat int           `env:"LOW_CONFIDENCE_REPEAT_TURNS" envDefault:"2"`
	MaxTurnsBeforeAgent int           `env:"MAX_TURNS_BEFORE_AGENT" envDefault:"8"`
	ContextTTL          time.Duration `env:"CONTEXT_TTL" envDefault:"30m"`
	MaxTurnHistory      int           `env:"MAX_TURN_HISTORY" envDefault:"10"`
	SweepSchedule       string        `env:"SWEEP_SCHEDULE" envDefault:"@every 1m"`
	TemplateRotation    RotationScope `env:"TEMPLATE_ROTATION_SCOPE" envDefault:"session"`
	CompanyName         string        `env:"COMPANY_NAME" envDefault:"RetailCX"`

	// Backend lookup
	BackendBaseURL string        `env:"BACKEND_BASE_URL"`
	BackendAPIKey  string        `env:"BACKEND_API_KEY"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"5s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Tracing
	TracingEndpoint string `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`
	TracingEnabled  bool   `env:"TRACING_ENABLED" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.EscalationThreshold < 0 || c.EscalationThreshold > 1 {
		return fmt.Errorf("escalation threshold must be in [0,1], got %v", c.EscalationThreshold)
	}
	if c.IntentFloor < 0 || c.IntentFloor > 1 {
		return fmt.Errorf("intent floor must be in [0,1], got %v", c.IntentFloor)
	}
	if c.MaxTurnHistory < 1 {
		return fmt.Errorf("max turn history must be positive, got %d", c.MaxTurnHistory)
	}
	if c.ContextTTL <= 0 {
		return fmt.Errorf("context TTL must be positive, got %v", c.ContextTTL)
	}
	if c.LowConfidenceRepeat < 2 {
		return fmt.Errorf("low-confidence repeat threshold must be at least 2, got %d", c.LowConfidenceRepeat)
	}
	switch c.TemplateRotation {
	case RotationPerSession, RotationGlobal:
	default:
		return fmt.Errorf("unknown template rotation scope %q", c.TemplateRotation)
	}
	return nil
}
