package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration. Values come from an optional YAML file
// (VISITORREG_CONFIG) and are then overridden by environment variables.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Visitor  Visitor  `yaml:"visitor"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Database configures the PostgreSQL pool. An empty URL selects in-memory stores.
type Database struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// Redis configures the visitor detail cache. An empty URL disables caching.
type Redis struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// Kafka configures the audit stream. Empty Brokers disables streaming.
type Kafka struct {
	Brokers    string `yaml:"brokers"`
	AuditTopic string `yaml:"audit_topic"`
	Acks       string `yaml:"acks"`
	OutboxSize int    `yaml:"outbox_size"`
}

// Visitor holds register behaviour settings.
type Visitor struct {
	SearchPageSize        int    `yaml:"search_page_size"`
	RegisterNoMaxAttempts int    `yaml:"register_no_max_attempts"`
	SiteTimezone          string `yaml:"site_timezone"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: Database{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: Redis{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			CacheTTL:     5 * time.Minute,
		},
		Kafka: Kafka{
			AuditTopic: "visitorreg.audit",
			Acks:       "all",
			OutboxSize: 1024,
		},
		Visitor: Visitor{
			SearchPageSize:        20,
			RegisterNoMaxAttempts: 3,
			SiteTimezone:          "Local",
		},
	}
}

// FromEnv builds the configuration so main stays lean.
func FromEnv() (Config, error) {
	cfg := Default()
	if path := os.Getenv("VISITORREG_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	setString(&cfg.Server.Addr, "VISITORREG_ADDR")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Kafka.Brokers, "KAFKA_BROKERS")
	setString(&cfg.Kafka.AuditTopic, "KAFKA_AUDIT_TOPIC")
	setString(&cfg.Kafka.Acks, "KAFKA_ACKS")
	setString(&cfg.Visitor.SiteTimezone, "SITE_TIMEZONE")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"},
		{&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"},
		{&cfg.Redis.PoolSize, "REDIS_POOL_SIZE"},
		{&cfg.Kafka.OutboxSize, "KAFKA_AUDIT_OUTBOX_SIZE"},
		{&cfg.Visitor.SearchPageSize, "SEARCH_PAGE_SIZE"},
		{&cfg.Visitor.RegisterNoMaxAttempts, "REGISTER_NO_MAX_ATTEMPTS"},
	}
	for _, e := range ints {
		if err := setInt(e.dst, e.key); err != nil {
			return Config{}, err
		}
	}

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&cfg.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT"},
		{&cfg.Database.ConnMaxLifetime, "DB_CONN_MAX_LIFETIME"},
		{&cfg.Redis.CacheTTL, "VISITOR_CACHE_TTL"},
	}
	for _, e := range durations {
		if err := setDuration(e.dst, e.key); err != nil {
			return Config{}, err
		}
	}

	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		cfg.Database.AutoMigrate = v == "true"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Visitor.SearchPageSize <= 0 {
		return fmt.Errorf("search page size must be positive")
	}
	if c.Visitor.RegisterNoMaxAttempts <= 0 {
		return fmt.Errorf("register number max attempts must be positive")
	}
	if _, err := c.Visitor.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves SiteTimezone, the zone that decides where a register day starts.
func (v Visitor) Location() (*time.Location, error) {
	if v.SiteTimezone == "" || v.SiteTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(v.SiteTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SITE_TIMEZONE %q: %w", v.SiteTimezone, err)
	}
	return loc, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
