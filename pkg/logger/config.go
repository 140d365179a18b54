package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Env string

const (
	EnvDev   Env = "dev"
	EnvStage Env = "stage"
	EnvProd  Env = "prod"
)

type Backend string

const (
	BackendStd Backend = "std" // slog text in dev, slog JSON elsewhere
	BackendZap Backend = "zap" // zap JSON through slog-zap
)

type Config struct {
	// Metadata attached to every line
	Service    string
	Version    string
	InstanceID string // default <hostname>-<8 hex chars>

	// Output control
	Level   slog.Level
	Env     Env     // default from APP_ENV
	Backend Backend // default: std in dev, zap in stage/prod
	Debug   bool
	Output  io.Writer // default os.Stdout

	// Zap sampling, per second
	SampleInitial    int
	SampleThereafter int

	AddSource bool
}

func (c Config) withDefaults() Config {
	if c.Env == "" {
		c.Env = DetectEnv()
	}
	if c.Service == "" {
		c.Service = "app"
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.InstanceID == "" {
		hn, err := os.Hostname()
		if err != nil || hn == "" {
			hn = "unknown"
		}
		c.InstanceID = hn + "-" + uuid.NewString()[:8]
	}
	if c.Backend == "" {
		c.Backend = BackendZap
		if c.Env == EnvDev {
			c.Backend = BackendStd
		}
	}
	if c.Debug && c.Level == 0 {
		c.Level = slog.LevelDebug
	}
	return c
}

// attrs is what every line carries.
func (c Config) attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("service", c.Service),
		slog.String("env", string(c.Env)),
		slog.String("version", c.Version),
		slog.String("instance_id", c.InstanceID),
		slog.Time("started_at", time.Now()),
	}
}

// DetectEnv reads APP_ENV.
func DetectEnv() Env {
	return ParseEnv(os.Getenv("APP_ENV"))
}

// ParseEnv maps common spellings onto Env; anything unrecognised is dev.
func ParseEnv(raw string) Env {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "prod", "production":
		return EnvProd
	case "stage", "staging", "preprod", "pre-production":
		return EnvStage
	default:
		return EnvDev
	}
}

// ParseLevel accepts debug|info|warn|error; empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
