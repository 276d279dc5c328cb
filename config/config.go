// Package config loads server configuration from flags with environment
// overrides.
package config

import (
	"flag"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Mode selects how framework-level error pages are rendered.
const (
	ModeHTML = "html"
	ModeJSON = "json"
)

// Config holds all application configuration.
type Config struct {
	Port    int
	H2CPort int // 0 disables the cleartext HTTP/2 side listener

	Workers        int // event-loop worker count, default NumCPU
	ReadBufferSize int
	MaxSendQueue   int // per-connection send-queue bound in bytes
	IdleTimeout    time.Duration

	Mode     string // html or json error rendering
	LogLevel string
	Pretty   bool // pretty console logging
}

// Default returns the configuration defaults without touching the flag
// package; used by tests and embedders.
func Default() *Config {
	return &Config{
		Port:           8080,
		H2CPort:        0,
		Workers:        runtime.NumCPU(),
		ReadBufferSize: 8192,
		MaxSendQueue:   1 << 20,
		IdleTimeout:    10 * time.Second,
		Mode:           ModeHTML,
		LogLevel:       "info",
	}
}

// New loads configuration from flags and environment variables.
func New() *Config {
	cfg := Default()

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.IntVar(&cfg.H2CPort, "h2c-port", cfg.H2CPort, "cleartext HTTP/2 side port (0 = disabled)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "event loop worker count")
	flag.IntVar(&cfg.ReadBufferSize, "read-buffer", cfg.ReadBufferSize, "per-connection read buffer size (bytes)")
	flag.IntVar(&cfg.MaxSendQueue, "max-send-queue", cfg.MaxSendQueue, "per-connection send queue bound (bytes)")
	flag.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "idle connection timeout")
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "error page rendering mode (html/json)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug/info/warn/error)")
	flag.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "human-readable console logging")

	flag.Parse()

	cfg.applyEnv()
	return cfg
}

// applyEnv lets environment variables override flag values.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("H2C_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.H2CPort = p
		}
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Workers = p
		}
	}
	if v := os.Getenv("MODE"); v == ModeHTML || v == ModeJSON {
		c.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
