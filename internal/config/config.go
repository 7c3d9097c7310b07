package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DB       DBConfig
	Log      LogConfig
	Feed     FeedConfig
	Pipeline PipelineTuning
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeedConfig holds S3 settings for the converted-document feed. An empty
// bucket selects the local-directory source instead.
type FeedConfig struct {
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// PipelineTuning holds the scalar pipeline knobs overridable via
// environment variables. The structured tables (aliases, patterns, rules)
// live in extract.Config and are supplied by the caller.
type PipelineTuning struct {
	InputDir          string  `mapstructure:"input_dir"`
	MinConfidence     float64 `mapstructure:"min_confidence"`
	FuzzyThreshold    float64 `mapstructure:"fuzzy_threshold"`
	MergeToleranceMin int     `mapstructure:"merge_tolerance_min"`
	PageWorkers       int     `mapstructure:"page_workers"`
	ChunkSize         int     `mapstructure:"chunk_size"`
}

// Load reads configuration from environment variables with the CASEPIPE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CASEPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "casepipe")
	v.SetDefault("db.password", "casepipe_secret")
	v.SetDefault("db.name", "casepipe_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Feed defaults
	v.SetDefault("feed.bucket", "")
	v.SetDefault("feed.prefix", "")
	v.SetDefault("feed.region", "us-east-1")
	v.SetDefault("feed.endpoint", "")
	v.SetDefault("feed.access_key", "")
	v.SetDefault("feed.secret_key", "")

	// Pipeline defaults
	v.SetDefault("pipeline.input_dir", "./documents")
	v.SetDefault("pipeline.min_confidence", 0.5)
	v.SetDefault("pipeline.fuzzy_threshold", 0.8)
	v.SetDefault("pipeline.merge_tolerance_min", 15)
	v.SetDefault("pipeline.page_workers", 4)
	v.SetDefault("pipeline.chunk_size", 10000)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"db.host":                      "CASEPIPE_DB_HOST",
		"db.port":                      "CASEPIPE_DB_PORT",
		"db.user":                      "CASEPIPE_DB_USER",
		"db.password":                  "CASEPIPE_DB_PASSWORD",
		"db.name":                      "CASEPIPE_DB_NAME",
		"db.sslmode":                   "CASEPIPE_DB_SSLMODE",
		"db.max_open":                  "CASEPIPE_DB_MAX_OPEN",
		"db.max_idle":                  "CASEPIPE_DB_MAX_IDLE",
		"log.level":                    "CASEPIPE_LOG_LEVEL",
		"log.format":                   "CASEPIPE_LOG_FORMAT",
		"feed.bucket":                  "CASEPIPE_FEED_BUCKET",
		"feed.prefix":                  "CASEPIPE_FEED_PREFIX",
		"feed.region":                  "CASEPIPE_FEED_REGION",
		"feed.endpoint":                "CASEPIPE_FEED_ENDPOINT",
		"feed.access_key":              "CASEPIPE_FEED_ACCESS_KEY",
		"feed.secret_key":              "CASEPIPE_FEED_SECRET_KEY",
		"pipeline.input_dir":           "CASEPIPE_PIPELINE_INPUT_DIR",
		"pipeline.min_confidence":      "CASEPIPE_PIPELINE_MIN_CONFIDENCE",
		"pipeline.fuzzy_threshold":     "CASEPIPE_PIPELINE_FUZZY_THRESHOLD",
		"pipeline.merge_tolerance_min": "CASEPIPE_PIPELINE_MERGE_TOLERANCE_MIN",
		"pipeline.page_workers":        "CASEPIPE_PIPELINE_PAGE_WORKERS",
		"pipeline.chunk_size":          "CASEPIPE_PIPELINE_CHUNK_SIZE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Feed = FeedConfig{
		Bucket:    v.GetString("feed.bucket"),
		Prefix:    v.GetString("feed.prefix"),
		Region:    v.GetString("feed.region"),
		Endpoint:  v.GetString("feed.endpoint"),
		AccessKey: v.GetString("feed.access_key"),
		SecretKey: v.GetString("feed.secret_key"),
	}
	cfg.Pipeline = PipelineTuning{
		InputDir:          v.GetString("pipeline.input_dir"),
		MinConfidence:     v.GetFloat64("pipeline.min_confidence"),
		FuzzyThreshold:    v.GetFloat64("pipeline.fuzzy_threshold"),
		MergeToleranceMin: v.GetInt("pipeline.merge_tolerance_min"),
		PageWorkers:       v.GetInt("pipeline.page_workers"),
		ChunkSize:         v.GetInt("pipeline.chunk_size"),
	}
	return cfg, nil
}
