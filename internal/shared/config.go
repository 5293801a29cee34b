package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

const (
	EnvPrefix     = "INSIGHTS_"
	ConfigFileEnv = "INSIGHTS_CONFIG"
)

type Config struct {
	AppEnv      string `koanf:"app_env"`
	HTTPAddr    string `koanf:"http_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	MySQLDSN    string `koanf:"mysql_dsn"`
	RedisAddr   string `koanf:"redis_addr"`
	RedisDB     int    `koanf:"redis_db"`
	RedisPass   string `koanf:"redis_password"`

	SourceBase string  `koanf:"source_base_url"`
	SourceKey  string  `koanf:"source_api_key"`
	SourceRPS  float64 `koanf:"source_rps"`

	Workers     int    `koanf:"ingest_workers"`
	ReviewCount int    `koanf:"ingest_review_count"`
	IngestFile  string `koanf:"ingest_file"`

	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	TaxonomyPath       string `koanf:"taxonomy_path"`
	MinMentions        int    `koanf:"min_mentions"`
	MaxExamples        int    `koanf:"max_examples"`
	MaxRecommendations int    `koanf:"max_recommendations"`
	Opportunities      bool   `koanf:"opportunities"`
	MaxOpportunities   int    `koanf:"max_opportunities"`
	AnalysisWorkers    int    `koanf:"analysis_workers"`

	// Apps maps entity code to the review source app id.
	Apps map[string]string `koanf:"apps"`
	// FieldAliases overrides normalizer source keys per canonical field.
	FieldAliases map[string][]string `koanf:"field_aliases"`
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Defaults returns the compiled-in configuration.
func Defaults() Config {
	return Config{
		AppEnv:             "prod",
		HTTPAddr:           ":8080",
		MetricsAddr:        ":9100",
		MySQLDSN:           "root:root@tcp(localhost:3306)/insights?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		RedisAddr:          "localhost:6379",
		SourceBase:         "http://localhost:8081/v1",
		SourceRPS:          5,
		Workers:            4,
		ReviewCount:        400,
		CacheTTLSeconds:    900,
		MinMentions:        5,
		MaxExamples:        3,
		MaxRecommendations: 3,
		Opportunities:      true,
		MaxOpportunities:   2,
		AnalysisWorkers:    4,
		Apps:               map[string]string{},
		FieldAliases:       map[string][]string{},
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. Defaults()
//  2. YAML file if INSIGHTS_CONFIG is set
//  3. env (prefix INSIGHTS_), e.g. INSIGHTS_MIN_MENTIONS -> min_mentions
func Load() (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.SourceKey == "" {
		log.Warn().Msg("source_api_key is empty")
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.HTTPAddr) == "":
		return fmt.Errorf("%w: http_addr must not be empty", ErrInvalidConfig)
	case c.MinMentions < 1:
		return fmt.Errorf("%w: min_mentions must be >= 1, got %d", ErrInvalidConfig, c.MinMentions)
	case c.Workers < 1:
		return fmt.Errorf("%w: ingest_workers must be >= 1, got %d", ErrInvalidConfig, c.Workers)
	case c.AnalysisWorkers < 1:
		return fmt.Errorf("%w: analysis_workers must be >= 1, got %d", ErrInvalidConfig, c.AnalysisWorkers)
	case c.MaxExamples < 0 || c.MaxRecommendations < 0 || c.MaxOpportunities < 0:
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	}
	return nil
}
