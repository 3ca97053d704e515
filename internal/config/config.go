package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the speaker endpoint and server configuration.
type Config struct {
	SonosIP            string `yaml:"sonos_ip"`
	SonosPort          int    `yaml:"sonos_port"`
	SonosTimeoutMs     int    `yaml:"sonos_timeout_ms"`
	SonosConfirmToggle bool   `yaml:"sonos_confirm_toggle"`

	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// JWTSecret enables bearer auth on the control API when set.
	JWTSecret               string `yaml:"jwt_secret"`
	JWTAccessTokenExpirySec int    `yaml:"jwt_access_token_expiry"`

	// PollSchedule is a cron spec for the connectivity probe; empty disables it.
	PollSchedule string `yaml:"poll_schedule"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		SonosIP:                 "192.168.1.10",
		SonosPort:               1400,
		SonosTimeoutMs:          2000,
		Host:                    "0.0.0.0",
		Port:                    "9000",
		JWTAccessTokenExpirySec: 3600,
		PollSchedule:            "@every 30s",
	}
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	return finish(applyEnv(Defaults()))
}

// LoadFile reads a YAML file over the defaults, then applies environment overrides.
// An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return finish(applyEnv(cfg))
}

// SonosTimeout returns the per-request timeout for speaker calls.
func (cfg Config) SonosTimeout() time.Duration {
	return time.Duration(cfg.SonosTimeoutMs) * time.Millisecond
}

// AuthEnabled reports whether the control API requires bearer tokens.
func (cfg Config) AuthEnabled() bool {
	return cfg.JWTSecret != ""
}

func applyEnv(cfg Config) Config {
	cfg.SonosIP = envString("SONOS_IP", cfg.SonosIP)
	cfg.SonosPort = envInt("SONOS_PORT", cfg.SonosPort)
	cfg.SonosTimeoutMs = envInt("SONOS_TIMEOUT_MS", cfg.SonosTimeoutMs)
	cfg.SonosConfirmToggle = envBool("SONOS_CONFIRM_TOGGLE", cfg.SonosConfirmToggle)
	cfg.Host = envString("HOST", cfg.Host)
	cfg.Port = envString("PORT", cfg.Port)
	cfg.JWTSecret = envString("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTAccessTokenExpirySec = envInt("JWT_ACCESS_TOKEN_EXPIRY", cfg.JWTAccessTokenExpirySec)
	if val, ok := os.LookupEnv("POLL_SCHEDULE"); ok {
		cfg.PollSchedule = strings.TrimSpace(val)
	}
	return cfg
}

func finish(cfg Config) (Config, error) {
	if strings.TrimSpace(cfg.SonosIP) == "" {
		return Config{}, fmt.Errorf("SONOS_IP must be set")
	}
	if cfg.SonosPort <= 0 || cfg.SonosPort > 65535 {
		return Config{}, fmt.Errorf("SONOS_PORT out of range: %d", cfg.SonosPort)
	}
	if cfg.SonosTimeoutMs <= 0 {
		return Config{}, fmt.Errorf("SONOS_TIMEOUT_MS must be positive")
	}
	if cfg.JWTSecret != "" && len(strings.TrimSpace(cfg.JWTSecret)) < 32 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.EqualFold(val, "true")
}
