package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cwrk-planet/underbyte/internal/postgres"
)

type HTTP struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// GRPC with an empty Addr disables the health endpoint.
type GRPC struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // underbyte
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	Level     string `yaml:"level"`     // debug|info|warn|error
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Storage struct {
	Driver string `yaml:"driver"` // sqlite|postgres
}

type Postgres struct {
	DSN               string        `yaml:"dsn"`
	MaxConns          int32         `yaml:"maxConns"`
	MinConns          int32         `yaml:"minConns"`
	MaxConnLifetime   time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime   time.Duration `yaml:"maxConnIdleTime"`
	HealthCheckPeriod time.Duration `yaml:"healthCheckPeriod"`
}

type SQLite struct {
	Path string `yaml:"path"` // ":memory:" keeps everything in process
}

type Uploads struct {
	Dir          string `yaml:"dir"`
	MaxBytes     int64  `yaml:"maxBytes"`
	PublicPrefix string `yaml:"publicPrefix"`
}

type WS struct {
	PingEvery    time.Duration `yaml:"pingEvery"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	SendQueue    int           `yaml:"sendQueue"`
	ReadLimit    int64         `yaml:"readLimit"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	GRPC     GRPC     `yaml:"grpc"`
	Logging  Logging  `yaml:"logging"`
	Storage  Storage  `yaml:"storage"`
	Postgres Postgres `yaml:"postgres"`
	SQLite   SQLite   `yaml:"sqlite"`
	Uploads  Uploads  `yaml:"uploads"`
	WS       WS       `yaml:"ws"`
	CORS     CORS     `yaml:"cors"`
}

// LoadConfig reads .env (if present), then the YAML file at CONFIG_PATH.
// Values of the form ${VAR} in the file are expanded from the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}

	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = "sqlite"
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required for the postgres driver")
	}
	if c.Storage.Driver == "sqlite" && c.SQLite.Path == "" {
		c.SQLite.Path = "underbyte.db"
	}

	// defaults
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout <= 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout <= 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "underbyte"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "uploads"
	}
	if c.Uploads.PublicPrefix == "" {
		c.Uploads.PublicPrefix = "/uploads"
	}
	if c.Uploads.MaxBytes <= 0 {
		c.Uploads.MaxBytes = 10 << 20
	}
	if c.WS.PingEvery < 0 {
		return errors.New("ws.pingEvery must not be negative")
	}
	return nil
}

func (p Postgres) ToPGConfig(service string) postgres.Config {
	return postgres.Config{
		DSN:               p.DSN,
		MaxConns:          p.MaxConns,
		MinConns:          p.MinConns,
		MaxConnLifetime:   p.MaxConnLifetime,
		MaxConnIdleTime:   p.MaxConnIdleTime,
		HealthCheckPeriod: p.HealthCheckPeriod,
		ApplicationName:   service,
	}
}
