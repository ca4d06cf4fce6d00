package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dhruvsoni1802/wiredriver/internal/session"
	"github.com/dhruvsoni1802/wiredriver/internal/storage"
	"github.com/dhruvsoni1802/wiredriver/internal/transport"
	"github.com/dhruvsoni1802/wiredriver/internal/wait"
)

// FileEnv names the optional YAML file read before the environment
const FileEnv = "WIREDRIVER_CONFIG"

// ErrInvalidConfig is returned when a loaded value is out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all service configuration
type Config struct {
	ServerPort  string `yaml:"server_port"`
	MaxSessions int    `yaml:"max_sessions"`

	// Redis configuration, the registry is skipped when disabled
	RedisEnabled  bool          `yaml:"redis_enabled"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPoolSize int           `yaml:"redis_pool_size"`
	SessionTTL    time.Duration `yaml:"session_ttl"`

	// Providers
	DefaultProvider      string        `yaml:"default_provider"`
	SauceUsername        string        `yaml:"sauce_username"`
	SauceAccessKey       string        `yaml:"sauce_access_key"`
	BrowserStackUsername string        `yaml:"browserstack_username"`
	BrowserStackKey      string        `yaml:"browserstack_access_key"`
	TestingBotKey        string        `yaml:"testingbot_key"`
	TestingBotSecret     string        `yaml:"testingbot_secret"`
	GridHubs             []string      `yaml:"grid_hubs"`
	HubHealthInterval    time.Duration `yaml:"hub_health_interval"`

	// Waits and retries
	ImplicitWait    time.Duration `yaml:"implicit_wait"`
	PollTimeout     time.Duration `yaml:"poll_timeout"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
	RetryMaxElapsed time.Duration `yaml:"retry_max_elapsed"`

	// Transport, zero timeout means none
	HTTPTimeout       time.Duration `yaml:"http_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	RequestBurst      int           `yaml:"request_burst"`

	// Housekeeping
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// Local driver binary, launched for local sessions without a port
	DriverPath string `yaml:"driver_path"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	retry := session.DefaultRetryPolicy()
	return &Config{
		ServerPort:        "8080",
		MaxSessions:       session.MaxTotalSessions,
		RedisEnabled:      true,
		RedisAddr:         "localhost:6379",
		SessionTTL:        1 * time.Hour,
		DefaultProvider:   string(session.ProviderLocal),
		HubHealthInterval: 30 * time.Second,
		PollTimeout:       wait.DefaultPollTimeout,
		RetryAttempts:     retry.MaxAttempts,
		RetryBackoff:      retry.Backoff,
		RetryMaxElapsed:   retry.MaxElapsed,
		IdleTimeout:       30 * time.Minute,
		CleanupInterval:   1 * time.Minute,
	}
}

// Load builds the configuration from defaults, then the YAML file named in
// WIREDRIVER_CONFIG, then environment variables. Later sources win.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	if cfg.DriverPath == "" {
		cfg.DriverPath = findDriver()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.MaxSessions = getEnvAsInt("MAX_SESSIONS", c.MaxSessions)

	c.RedisEnabled = getEnvAsBool("REDIS_ENABLED", c.RedisEnabled)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvAsInt("REDIS_DB", c.RedisDB)
	c.RedisPoolSize = getEnvAsInt("REDIS_POOL_SIZE", c.RedisPoolSize)
	c.SessionTTL = getEnvAsDuration("SESSION_TTL", c.SessionTTL)

	c.DefaultProvider = getEnv("DEFAULT_PROVIDER", c.DefaultProvider)
	c.SauceUsername = getEnv("SAUCE_USERNAME", c.SauceUsername)
	c.SauceAccessKey = getEnv("SAUCE_ACCESS_KEY", c.SauceAccessKey)
	c.BrowserStackUsername = getEnv("BROWSERSTACK_USERNAME", c.BrowserStackUsername)
	c.BrowserStackKey = getEnv("BROWSERSTACK_ACCESS_KEY", c.BrowserStackKey)
	c.TestingBotKey = getEnv("TESTINGBOT_KEY", c.TestingBotKey)
	c.TestingBotSecret = getEnv("TESTINGBOT_SECRET", c.TestingBotSecret)
	c.GridHubs = getEnvAsList("GRID_HUBS", c.GridHubs)
	c.HubHealthInterval = getEnvAsDuration("HUB_HEALTH_INTERVAL", c.HubHealthInterval)

	c.ImplicitWait = getEnvAsDuration("IMPLICIT_WAIT", c.ImplicitWait)
	c.PollTimeout = getEnvAsDuration("POLL_TIMEOUT", c.PollTimeout)
	c.RetryAttempts = getEnvAsInt("RETRY_ATTEMPTS", c.RetryAttempts)
	c.RetryBackoff = getEnvAsDuration("RETRY_BACKOFF", c.RetryBackoff)
	c.RetryMaxElapsed = getEnvAsDuration("RETRY_MAX_ELAPSED", c.RetryMaxElapsed)

	c.HTTPTimeout = getEnvAsDuration("HTTP_TIMEOUT", c.HTTPTimeout)
	c.RequestsPerSecond = getEnvAsFloat("REQUESTS_PER_SECOND", c.RequestsPerSecond)
	c.RequestBurst = getEnvAsInt("REQUEST_BURST", c.RequestBurst)

	c.IdleTimeout = getEnvAsDuration("IDLE_TIMEOUT", c.IdleTimeout)
	c.CleanupInterval = getEnvAsDuration("CLEANUP_INTERVAL", c.CleanupInterval)
	c.DriverPath = getEnv("DRIVER_PATH", c.DriverPath)
}

// Validate checks ranges and the default provider name
func (c *Config) Validate() error {
	if _, err := session.ParseProvider(c.DefaultProvider); err != nil {
		return fmt.Errorf("%w: default provider: %w", ErrInvalidConfig, err)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("%w: max sessions must be positive, got %d", ErrInvalidConfig, c.MaxSessions)
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("%w: retry attempts must be positive, got %d", ErrInvalidConfig, c.RetryAttempts)
	}
	if c.ImplicitWait < 0 || c.PollTimeout < 0 || c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if c.CleanupInterval <= 0 || c.HubHealthInterval <= 0 {
		return fmt.Errorf("%w: cleanup and health check intervals must be positive", ErrInvalidConfig)
	}
	if c.RedisPoolSize < 0 {
		return fmt.Errorf("%w: redis pool size must not be negative, got %d", ErrInvalidConfig, c.RedisPoolSize)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// RedisOptions returns where the session registry lives
func (c *Config) RedisOptions() storage.RedisOptions {
	return storage.RedisOptions{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		PoolSize: c.RedisPoolSize,
	}
}

// WaitConfig returns the wait budgets new sessions start with
func (c *Config) WaitConfig() wait.Config {
	return wait.Config{Implicit: c.ImplicitWait, Poll: c.PollTimeout}
}

// RetryPolicy returns the policy for providers that reject sessions over their parallel limit
func (c *Config) RetryPolicy() session.RetryPolicy {
	return session.RetryPolicy{
		Backoff:     c.RetryBackoff,
		MaxAttempts: c.RetryAttempts,
		MaxElapsed:  c.RetryMaxElapsed,
	}
}

// TransportOptions returns the HTTP transport settings
func (c *Config) TransportOptions() transport.Options {
	return transport.Options{
		Timeout:           c.HTTPTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.RequestBurst,
	}
}

// Credentials returns the configured credentials per provider
func (c *Config) Credentials() map[session.Provider]session.Credentials {
	creds := make(map[session.Provider]session.Credentials)
	if c.SauceUsername != "" {
		creds[session.ProviderSauceLabs] = session.Credentials{Username: c.SauceUsername, AccessKey: c.SauceAccessKey}
	}
	if c.BrowserStackUsername != "" {
		creds[session.ProviderBrowserStack] = session.Credentials{Username: c.BrowserStackUsername, AccessKey: c.BrowserStackKey}
	}
	if c.TestingBotKey != "" {
		creds[session.ProviderTestingBot] = session.Credentials{Username: c.TestingBotKey, AccessKey: c.TestingBotSecret}
	}
	return creds
}

func getEnv(key string, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	var list []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// driverNames are looked up on PATH when DRIVER_PATH is not set
var driverNames = []string{"chromedriver", "geckodriver", "safaridriver"}

// findDriver returns the first driver binary on PATH, or "" when there is none.
// Local sessions then need an explicit port.
func findDriver() string {
	for _, name := range driverNames {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
