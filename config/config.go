package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio.
type Config struct {
	Server      ServerConfig              `yaml:"server"`
	Leaderboard LeaderboardConfig         `yaml:"leaderboard"`
	Platforms   map[string]PlatformConfig `yaml:"platforms"`
	Storage     StorageConfig             `yaml:"storage"`
	Redis       RedisConfig               `yaml:"redis"`
	Kafka       KafkaConfig               `yaml:"kafka"`
	Resolver    ResolverConfig            `yaml:"resolver"`
	TruthScore  TruthScoreConfig          `yaml:"truthscore"`
	Log         LogConfig                 `yaml:"log"`
}

// ServerConfig controla el servidor HTTP.
type ServerConfig struct {
	Addr               string   `yaml:"addr"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	ReadTimeoutSeconds int      `yaml:"read_timeout_seconds"`
}

// LeaderboardConfig controla la caché del leaderboard unificado.
type LeaderboardConfig struct {
	TTLSeconds           int `yaml:"ttl_seconds"`   // ventana fresca
	StaleSeconds         int `yaml:"stale_seconds"` // edad máxima servible
	SourceTimeoutSeconds int `yaml:"source_timeout_seconds"`
	PerSourceLimit       int `yaml:"per_source_limit"`
	PageSize             int `yaml:"page_size"`
	MaxPageSize          int `yaml:"max_page_size"`
	Concurrency          int `yaml:"concurrency"`
}

// PlatformConfig es la configuración de una plataforma.
// Enabled nil significa habilitada.
type PlatformConfig struct {
	Enabled    *bool   `yaml:"enabled"`
	BaseURL    string  `yaml:"base_url"`
	DataURL    string  `yaml:"data_url"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	Burst      int     `yaml:"burst"`
}

// IsEnabled devuelve true salvo que enabled sea false explícitamente.
func (p PlatformConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// StorageConfig controla dónde se persisten las apuestas simuladas.
type StorageConfig struct {
	Driver     string `yaml:"driver"` // sqlite | postgres
	DSN        string `yaml:"dsn"`    // ruta al archivo SQLite, ":memory:" o URL de Postgres
	SkipSchema bool   `yaml:"skip_schema"`
}

// RedisConfig habilita la caché compartida. Addr vacío la deshabilita.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled indica si hay Redis configurado.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// KafkaConfig habilita el stream de resoluciones. Sin brokers se deshabilita.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Enabled indica si hay brokers configurados.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// ResolverConfig controla los jobs de resolución.
type ResolverConfig struct {
	Schedule  string `yaml:"schedule"` // spec de cron, p.ej. "@every 5m"
	BatchSize int    `yaml:"batch_size"`
}

// TruthScoreConfig controla el cacheo de reputaciones.
type TruthScoreConfig struct {
	MaxAgeSeconds int `yaml:"max_age_seconds"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Parse interpreta el YAML, aplica overrides de entorno y defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if cfg.Storage.Driver != "sqlite" && cfg.Storage.Driver != "postgres" {
		return nil, fmt.Errorf("storage.driver %q: must be sqlite or postgres", cfg.Storage.Driver)
	}
	return &cfg, nil
}

// ReadTimeout devuelve el timeout de lectura del servidor.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

// TTL devuelve la ventana fresca del leaderboard.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Leaderboard.TTLSeconds) * time.Second
}

// StaleAfter devuelve la edad máxima con la que se sirve un snapshot.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Leaderboard.StaleSeconds) * time.Second
}

// SourceTimeout devuelve el timeout por plataforma durante un refresh.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Leaderboard.SourceTimeoutSeconds) * time.Second
}

// ScoreMaxAge devuelve cuánto vale una reputación cacheada.
func (c *Config) ScoreMaxAge() time.Duration {
	return time.Duration(c.TruthScore.MaxAgeSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.Driver = "postgres"
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}

	lb := &cfg.Leaderboard
	if lb.TTLSeconds <= 0 {
		lb.TTLSeconds = 300
	}
	if lb.StaleSeconds < lb.TTLSeconds {
		lb.StaleSeconds = max(3600, lb.TTLSeconds)
	}
	if lb.SourceTimeoutSeconds <= 0 {
		lb.SourceTimeoutSeconds = 8
	}
	if lb.PerSourceLimit <= 0 {
		lb.PerSourceLimit = 100
	}
	if lb.MaxPageSize <= 0 {
		lb.MaxPageSize = 100
	}
	if lb.PageSize <= 0 || lb.PageSize > lb.MaxPageSize {
		lb.PageSize = min(25, lb.MaxPageSize)
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" && cfg.Storage.Driver == "sqlite" {
		cfg.Storage.DSN = "truthbounty.db"
	}

	if cfg.Resolver.Schedule == "" {
		cfg.Resolver.Schedule = "@every 5m"
	}
	if cfg.Resolver.BatchSize <= 0 {
		cfg.Resolver.BatchSize = 500
	}
	if cfg.TruthScore.MaxAgeSeconds <= 0 {
		cfg.TruthScore.MaxAgeSeconds = 300
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
