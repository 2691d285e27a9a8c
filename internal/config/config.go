package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatabasePath string

	// Map listing and criticality display.
	MapRecentWindow        time.Duration
	MapListLimit           int
	CriticalityAttenuation bool

	// Open-Meteo elevation lookup.
	ElevationEnabled   bool
	ElevationBaseURL   string
	ElevationTimeout   time.Duration
	ElevationCacheSize int

	// Observation feed.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaTopic         string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	window, err := parsePositiveDuration("MAP_RECENT_WINDOW", "336h")
	if err != nil {
		return nil, err
	}

	elevationTimeout, err := parsePositiveDuration("ELEVATION_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	listLimit, err := parsePositiveInt("MAP_LIST_LIMIT", 500)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabasePath: sharedcfg.EnvOrDefault("DATABASE_PATH", "nivo.db"),

		MapRecentWindow:        window,
		MapListLimit:           listLimit,
		CriticalityAttenuation: os.Getenv("CRITICALITY_ATTENUATION") == "true",

		ElevationEnabled:   os.Getenv("ELEVATION_ENABLED") != "false",
		ElevationBaseURL:   sharedcfg.EnvOrDefault("ELEVATION_BASE_URL", "https://api.open-meteo.com/v1/elevation"),
		ElevationTimeout:   elevationTimeout,
		ElevationCacheSize: parseCacheSize(),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "nivo-observations"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.DatabasePath == "" {
		return nil, errors.New("DATABASE_PATH is required")
	}
	if cfg.ElevationEnabled && cfg.ElevationBaseURL == "" {
		return nil, errors.New("ELEVATION_ENABLED is true but ELEVATION_BASE_URL is empty")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseCacheSize() int {
	if s := os.Getenv("ELEVATION_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
