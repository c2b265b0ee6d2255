package config

import (
	"encoding/json"
	"flag"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Config struct {
	ConfigFile string
	LogLevel   zerolog.Level

	BaseURL        string `json:"base_url"`
	PollIntervalMs int    `json:"poll_interval_ms"`
	HTTPTimeoutMs  int    `json:"http_timeout_ms"`
	ListenPort     int    `json:"listen_port"`
	DBPath         string `json:"db_path"`

	NtfyTopic string `json:"ntfy_topic"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`

	ServicePath string `json:"service_path"`
}

func Load() *Config {
	var cfg Config
	var logLevel string

	flag.StringVar(&cfg.ConfigFile, "config-file", "config.json", "Path to client config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg.LogLevel = parseLogLevel(logLevel)

	file, err := os.Open(cfg.ConfigFile)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	cfg.applyDefaults()
	cfg.validate()
	return &cfg
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) applyDefaults() {
	if cfg.PollIntervalMs == 0 {
		cfg.PollIntervalMs = 5000
	}
	if cfg.HTTPTimeoutMs == 0 {
		cfg.HTTPTimeoutMs = 5000
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = 8090
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "data/aquamon.db"
	}
	if cfg.DDNamespace == "" {
		cfg.DDNamespace = "aquamon."
	}
	if cfg.ServicePath == "" {
		cfg.ServicePath = "/etc/systemd/system/aquamon.service"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
}

func (cfg *Config) validate() {
	if cfg.BaseURL == "" {
		panic("Missing required config field: base_url")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		panic("Invalid base_url: " + cfg.BaseURL)
	}
	if cfg.PollIntervalMs < 0 || cfg.HTTPTimeoutMs < 0 {
		panic("Intervals and timeouts must not be negative")
	}
}
