package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	Session     SessionConfig     `mapstructure:"session"`
	Description DescriptionConfig `mapstructure:"description"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// FeedDomain is the right-hand side of iCalendar UIDs.
	FeedDomain string `mapstructure:"feed_domain"`
}

type DatabaseConfig struct {
	// Driver is one of mysql, postgres, sqlite.
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
}

// RedisConfig enables the session cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// KafkaConfig enables the approved-event feed when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// SMTPConfig enables approval mails when Host is set.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SessionConfig struct {
	MaxAge        time.Duration `mapstructure:"max_age"`
	PurgeSchedule string        `mapstructure:"purge_schedule"`
}

type DescriptionConfig struct {
	ChunkSize     int `mapstructure:"chunk_size"`
	ExcerptLength int `mapstructure:"excerpt_length"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills zero values with defaults so partial files still work.
func (c *Config) Normalize() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.FeedDomain == "" {
		c.Server.FeedDomain = "dormdigest.local"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 50
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = 10 * time.Minute
	}
	if c.Database.LogLevel == "" {
		c.Database.LogLevel = "warn"
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "dormdigest.events.approved"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Session.MaxAge <= 0 {
		c.Session.MaxAge = 7 * 24 * time.Hour
	}
	if c.Session.PurgeSchedule == "" {
		c.Session.PurgeSchedule = "@hourly"
	}
	if c.Description.ChunkSize <= 0 {
		c.Description.ChunkSize = 65000
	}
	if c.Description.ExcerptLength <= 0 {
		c.Description.ExcerptLength = 100
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

var envBindings = map[string]string{
	"server.listen":          "SERVER_LISTEN",
	"server.mode":            "SERVER_MODE",
	"database.driver":        "DB_DRIVER",
	"database.dsn":           "DB_DSN",
	"redis.addr":             "REDIS_ADDR",
	"redis.password":         "REDIS_PASSWORD",
	"smtp.host":              "SMTP_HOST",
	"smtp.username":          "SMTP_USERNAME",
	"smtp.password":          "SMTP_PASSWORD",
	"session.max_age":        "SESSION_MAX_AGE",
	"description.chunk_size": "DESCRIPTION_CHUNK_SIZE",
	"logging.level":          "LOG_LEVEL",
}

// Load reads the YAML file at path (or CONFIG_FILE when set), applies
// environment overrides and defaults. An empty path with no CONFIG_FILE
// yields defaults plus environment.
func Load(path string) (*Config, error) {
	if env := os.Getenv("CONFIG_FILE"); env != "" {
		path = env
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		file := filepath.Base(path)
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName(strings.TrimSuffix(file, filepath.Ext(file)))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.Normalize()
	return &c, nil
}
