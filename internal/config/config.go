// Package config loads the service configuration from configs/config.yml,
// an optional .env file and HOSE_* environment variables.
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

const (
	envPrefix   = "HOSE"
	envFile     = "./.env"
	DefaultPath = "configs/config.yml"
)

type Config struct {
	Port     string         `mapstructure:"port" validate:"required,numeric"`
	DB       DBConfig       `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	NFC      NFCConfig      `mapstructure:"nfc"`
	Auth     AuthConfig     `mapstructure:"auth"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Sessions SessionsConfig `mapstructure:"sessions"`
}

type DBConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type NFCConfig struct {
	Endpoint   string        `mapstructure:"endpoint" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Retries    int           `mapstructure:"retries" validate:"gte=0,lte=10"`
	RetryDelay time.Duration `mapstructure:"retry_delay" validate:"gt=0"`
	Interval   time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key" validate:"required,min=16"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	// Admins sign up with the admin role.
	Admins []string `mapstructure:"admins"`
}

// MQTTConfig points at the broker hardware readers publish to. An empty
// broker disables reader-bound sessions.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker" validate:"omitempty,url"`
	ClientID    string `mapstructure:"client_id" validate:"required_with=Broker"`
	TopicPrefix string `mapstructure:"topic_prefix" validate:"required"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type SessionsConfig struct {
	TTL           time.Duration `mapstructure:"ttl" validate:"gt=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("nfc.endpoint", "http://172.20.10.5/api/nfc")
	v.SetDefault("nfc.timeout", 10*time.Second)
	v.SetDefault("nfc.retries", 3)
	v.SetDefault("nfc.retry_delay", time.Second)
	v.SetDefault("nfc.interval", 2*time.Second)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("auth.admins", []string{})
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "hose-installation")
	v.SetDefault("mqtt.topic_prefix", "hoses/readers")
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("sessions.ttl", 30*time.Minute)
	v.SetDefault("sessions.sweep_interval", time.Minute)
}

// Load reads the file at path (a missing file leaves the defaults) and
// applies environment overrides such as HOSE_NFC_ENDPOINT.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsAdmin reports whether username is listed under auth.admins.
func (c AuthConfig) IsAdmin(username string) bool {
	for _, a := range c.Admins {
		if strings.EqualFold(strings.TrimSpace(a), username) {
			return true
		}
	}
	return false
}
