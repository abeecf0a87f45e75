package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinInterval is the floor for the polling interval. VRChat rate-limits
// chatbox updates, so anything faster just gets dropped by the game.
const MinInterval = time.Second

type Config struct {
	Host            string
	Port            int
	Interval        time.Duration
	ShowTime        bool
	ShowCPU         bool
	ShowRAM         bool
	ShowGPU         bool
	Notify          bool
	ProbeListenAddr string
	SendTimeout     time.Duration
	ErrorBackoff    time.Duration
	ShutdownTimeout time.Duration
	LogJSON         bool
	LogLevel        string
}

func Default() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            9000,
		Interval:        3 * time.Second,
		ShowTime:        true,
		ShowCPU:         true,
		ShowRAM:         true,
		ShowGPU:         true,
		Notify:          false,
		ProbeListenAddr: "",
		SendTimeout:     2 * time.Second,
		ErrorBackoff:    1500 * time.Millisecond,
		ShutdownTimeout: 5 * time.Second,
		LogJSON:         false,
		LogLevel:        "info",
	}
}

// Load builds the effective configuration: defaults first, then the YAML
// file, then VRCSTAT_* environment variables. CLI flags are applied by the
// caller on top of the result.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.applyFile(path, explicit); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath is the location probed when no --config flag is given. A
// missing file there is fine; an explicitly named file must exist.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vrc-sysstat", "config.yaml")
}

type fileConfig struct {
	Host            *string `yaml:"host"`
	Port            *int    `yaml:"port"`
	Interval        *string `yaml:"interval"`
	ShowTime        *bool   `yaml:"show_time"`
	ShowCPU         *bool   `yaml:"show_cpu"`
	ShowRAM         *bool   `yaml:"show_ram"`
	ShowGPU         *bool   `yaml:"show_gpu"`
	Notify          *bool   `yaml:"notify"`
	ProbeAddr       *string `yaml:"probe_addr"`
	SendTimeout     *string `yaml:"send_timeout"`
	ErrorBackoff    *string `yaml:"error_backoff"`
	ShutdownTimeout *string `yaml:"shutdown_timeout"`
	LogLevel        *string `yaml:"log_level"`
	LogJSON         *bool   `yaml:"log_json"`
}

func (c *Config) applyFile(path string, explicit bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Host != nil {
		c.Host = strings.TrimSpace(*fc.Host)
	}
	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.Interval != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*fc.Interval))
		if err != nil {
			return fmt.Errorf("parse interval %q: %w", *fc.Interval, err)
		}
		c.Interval = d
	}
	if fc.ShowTime != nil {
		c.ShowTime = *fc.ShowTime
	}
	if fc.ShowCPU != nil {
		c.ShowCPU = *fc.ShowCPU
	}
	if fc.ShowRAM != nil {
		c.ShowRAM = *fc.ShowRAM
	}
	if fc.ShowGPU != nil {
		c.ShowGPU = *fc.ShowGPU
	}
	if fc.Notify != nil {
		c.Notify = *fc.Notify
	}
	if fc.ProbeAddr != nil {
		c.ProbeListenAddr = strings.TrimSpace(*fc.ProbeAddr)
	}
	if fc.SendTimeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*fc.SendTimeout))
		if err != nil {
			return fmt.Errorf("parse send_timeout %q: %w", *fc.SendTimeout, err)
		}
		c.SendTimeout = d
	}
	if fc.ErrorBackoff != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*fc.ErrorBackoff))
		if err != nil {
			return fmt.Errorf("parse error_backoff %q: %w", *fc.ErrorBackoff, err)
		}
		c.ErrorBackoff = d
	}
	if fc.ShutdownTimeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*fc.ShutdownTimeout))
		if err != nil {
			return fmt.Errorf("parse shutdown_timeout %q: %w", *fc.ShutdownTimeout, err)
		}
		c.ShutdownTimeout = d
	}
	if fc.LogLevel != nil {
		c.LogLevel = strings.ToLower(strings.TrimSpace(*fc.LogLevel))
	}
	if fc.LogJSON != nil {
		c.LogJSON = *fc.LogJSON
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Host = env("VRCSTAT_HOST", c.Host)
	c.Port = envInt("VRCSTAT_PORT", c.Port)
	c.Interval = envDuration("VRCSTAT_INTERVAL", c.Interval)
	c.ShowTime = envBool("VRCSTAT_SHOW_TIME", c.ShowTime)
	c.ShowCPU = envBool("VRCSTAT_SHOW_CPU", c.ShowCPU)
	c.ShowRAM = envBool("VRCSTAT_SHOW_RAM", c.ShowRAM)
	c.ShowGPU = envBool("VRCSTAT_SHOW_GPU", c.ShowGPU)
	c.Notify = envBool("VRCSTAT_NOTIFY", c.Notify)
	c.ProbeListenAddr = env("VRCSTAT_PROBE_ADDR", c.ProbeListenAddr)
	c.SendTimeout = envDuration("VRCSTAT_SEND_TIMEOUT", c.SendTimeout)
	c.ErrorBackoff = envDuration("VRCSTAT_ERROR_BACKOFF", c.ErrorBackoff)
	c.ShutdownTimeout = envDuration("VRCSTAT_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.LogJSON = envBool("VRCSTAT_LOG_JSON", c.LogJSON)
	c.LogLevel = strings.ToLower(env("VRCSTAT_LOG_LEVEL", c.LogLevel))
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("destination host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("destination port %d out of range", c.Port)
	}
	if c.Interval < MinInterval {
		return fmt.Errorf("interval must be at least %s", MinInterval)
	}
	if c.SendTimeout <= 0 {
		return errors.New("send timeout must be > 0")
	}
	if c.ErrorBackoff < 0 {
		return errors.New("error backoff must be >= 0")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be > 0")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	return nil
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
