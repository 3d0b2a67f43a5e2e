package regulatory

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/qeme/sentinel-lite/util"
)

// Defaults applied when the environment leaves a setting unset.
const (
	DefaultCacheTTL      = 24 * time.Hour
	DefaultDataDir       = "data"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultMaxBodyBytes  = 10 << 20
	DefaultWorkers       = 4
	DefaultUserAgent     = "QEME-Sentinel-Lite/1.0"
	DefaultMailPort      = 25
	DefaultMailFrom      = "sentinel-lite@localhost"
	DefaultMailTimeout   = 10 * time.Second
	DefaultKafkaTopic    = "regulatory-updates"
	DefaultStoreBackend  = StoreFile
	cacheFileName        = "regulatory_cache.json"
	fingerprintDirectory = "hashes"
	reportsDirectory     = "reports"
)

// Store backends.
const (
	StoreFile     = "file"
	StoreArangoDB = "arangodb"
)

// MailConfig holds the outbound mail relay settings.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Timeout  time.Duration
}

// Configured reports whether alerting can be attempted at all.
func (m MailConfig) Configured() bool {
	return m.Host != "" && len(m.To) > 0
}

// KafkaConfig holds the optional event publishing settings.
type KafkaConfig struct {
	Brokers   []string
	Topic     string
	APIKey    string
	APISecret string
}

// Enabled reports whether event publishing is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Config is the complete configuration of the regulatory checker.
type Config struct {
	CacheTTL      time.Duration
	DataDir       string
	FetchTimeout  time.Duration
	MaxBodyBytes  int64
	UserAgent     string
	Workers       int
	SourcesFile   string
	CheckInterval time.Duration
	LogLevel      string
	Store         string
	Mail          MailConfig
	Kafka         KafkaConfig
}

// DefaultConfig returns the documented defaults with alerting and publishing disabled.
func DefaultConfig() Config {
	return Config{
		CacheTTL:     DefaultCacheTTL,
		DataDir:      DefaultDataDir,
		FetchTimeout: DefaultFetchTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		UserAgent:    DefaultUserAgent,
		Workers:      DefaultWorkers,
		LogLevel:     "warn",
		Store:        DefaultStoreBackend,
		Mail: MailConfig{
			Port:    DefaultMailPort,
			From:    DefaultMailFrom,
			Timeout: DefaultMailTimeout,
		},
		Kafka: KafkaConfig{Topic: DefaultKafkaTopic},
	}
}

// CacheFile is the path of the cache snapshot.
func (c Config) CacheFile() string {
	return filepath.Join(c.DataDir, cacheFileName)
}

// FingerprintDir is the directory holding one fingerprint file per source.
func (c Config) FingerprintDir() string {
	return filepath.Join(c.DataDir, fingerprintDirectory)
}

// ReportsDir is the directory holding persisted compliance reports.
func (c Config) ReportsDir() string {
	return filepath.Join(c.DataDir, reportsDirectory)
}

// LoadConfig reads the configuration from the environment on top of DefaultConfig.
// Unset values keep their defaults; malformed values are reported as errors.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	cacheHours, err := util.GetEnvInt("REGULATORY_CACHE_HOURS", int(DefaultCacheTTL/time.Hour))
	errs = append(errs, err)
	cfg.CacheTTL = time.Duration(cacheHours) * time.Hour

	cfg.DataDir = util.GetEnvDefault("REGULATORY_DATA_DIR", cfg.DataDir)

	cfg.FetchTimeout, err = util.GetEnvDuration("REGULATORY_FETCH_TIMEOUT", cfg.FetchTimeout)
	errs = append(errs, err)

	cfg.MaxBodyBytes, err = util.GetEnvInt64("REGULATORY_FETCH_MAX_BYTES", cfg.MaxBodyBytes)
	errs = append(errs, err)

	cfg.Workers, err = util.GetEnvInt("REGULATORY_WORKERS", cfg.Workers)
	errs = append(errs, err)

	cfg.SourcesFile = util.GetEnvDefault("REGULATORY_SOURCES_FILE", "")

	cfg.CheckInterval, err = util.GetEnvDuration("REGULATORY_CHECK_INTERVAL", 0)
	errs = append(errs, err)

	cfg.LogLevel = util.GetEnvDefault("REGULATORY_LOG_LEVEL", cfg.LogLevel)
	cfg.Store = util.GetEnvDefault("REGULATORY_STORE", cfg.Store)

	cfg.Mail.Host = util.GetEnvDefault("SMTP_HOST", "")
	cfg.Mail.Port, err = util.GetEnvInt("SMTP_PORT", DefaultMailPort)
	errs = append(errs, err)
	cfg.Mail.Username = util.GetEnvDefault("SMTP_USER", "")
	cfg.Mail.Password = util.GetEnvDefault("SMTP_PASS", "")
	cfg.Mail.From = util.GetEnvDefault("SMTP_FROM", DefaultMailFrom)
	cfg.Mail.To = util.SplitList(util.GetEnvDefault("SMTP_TO", ""))
	cfg.Mail.Timeout, err = util.GetEnvDuration("SMTP_TIMEOUT", DefaultMailTimeout)
	errs = append(errs, err)

	cfg.Kafka.Brokers = util.SplitList(util.GetEnvDefault("KAFKA_BROKERS", ""))
	cfg.Kafka.Topic = util.GetEnvDefault("KAFKA_TOPIC", DefaultKafkaTopic)
	cfg.Kafka.APIKey = util.GetEnvDefault("KAFKA_API_KEY", "")
	cfg.Kafka.APISecret = util.GetEnvDefault("KAFKA_API_SECRET", "")

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the invariants LoadConfig cannot express through defaults.
func (c Config) Validate() error {
	switch {
	case c.CacheTTL < 0:
		return errors.New("cache TTL must not be negative")
	case c.FetchTimeout <= 0:
		return errors.New("fetch timeout must be positive")
	case c.Workers < 1:
		return errors.New("workers must be at least 1")
	case c.MaxBodyBytes <= 0:
		return errors.New("max body bytes must be positive")
	case c.CheckInterval < 0:
		return errors.New("check interval must not be negative")
	case c.Store != StoreFile && c.Store != StoreArangoDB:
		return errors.New("store must be " + StoreFile + " or " + StoreArangoDB)
	}
	return nil
}
