package config

import (
	"bytes"
	_ "embed"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP       HTTPConfig      `mapstructure:"http"`
	MySQL      DatabaseConfig  `mapstructure:"mysql"`
	ClickHouse DatabaseConfig  `mapstructure:"clickhouse"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	Sweep      SweepConfig     `mapstructure:"sweep"`
	Notice     NoticeConfig    `mapstructure:"notice"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Log        LogConfig       `mapstructure:"log"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type SweepConfig struct {
	Schedule     string        `mapstructure:"schedule"`      // cron spec, evaluated in UTC
	LookbackDays int           `mapstructure:"lookback_days"` // 0 = exact-date selection only
	MaxInFlight  int           `mapstructure:"max_in_flight"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
}

type NoticeConfig struct {
	WindowDays int `mapstructure:"window_days"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

type AuthConfig struct {
	APIKey     string `mapstructure:"api_key"`     // upstream app key (X-API-Key)
	CronSecret string `mapstructure:"cron_secret"` // scheduler bearer token
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (SENTINEL_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (SENTINEL_*)
	v.SetEnvPrefix("SENTINEL")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
