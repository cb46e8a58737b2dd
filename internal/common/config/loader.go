// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// defaults are registered with viper so every key is also reachable through
// an environment variable (MODEL_API_KEY -> model.api_key).
var defaults = map[string]interface{}{
	"app.name":        "midc-chatbot",
	"app.version":     "dev",
	"app.environment": "development",

	"server.port":             8080,
	"server.read_timeout":     15000,
	"server.write_timeout":    60000,
	"server.shutdown_timeout": 10000,

	"knowledge.source":            "file",
	"knowledge.root":              "./data/content",
	"knowledge.index":             "midc-documents",
	"knowledge.table":             "midc_documents",
	"knowledge.refresh_schedule":  "@every 10m",
	"knowledge.watch":             false,
	"knowledge.cache.enabled":     false,
	"knowledge.cache.ttl_seconds": 300,

	"database.postgres.host":            "",
	"database.postgres.port":            5432,
	"database.postgres.database":        "",
	"database.postgres.user":            "",
	"database.postgres.password":        "",
	"database.postgres.max_connections": 25,
	"database.postgres.max_idle":        5,
	"database.postgres.sslmode":         "disable",
	"database.elasticsearch.addresses":  []string{},
	"database.elasticsearch.url":        "",
	"database.elasticsearch.username":   "",
	"database.elasticsearch.password":   "",
	"database.redis.address":            "",
	"database.redis.password":           "",
	"database.redis.db":                 0,

	"model.provider":            "gemini",
	"model.api_key":             "",
	"model.backend":             "gemini",
	"model.project":             "",
	"model.location":            "us-central1",
	"model.name":                "gemini-2.5-flash",
	"model.temperature":         0.2,
	"model.max_tokens":          1024,
	"model.timeout":             60000,
	"model.max_retries":         2,
	"model.base_url":            "",
	"model.requests_per_second": 0,

	"pipeline.top_k":               5,
	"pipeline.chunk_cap":           3,
	"pipeline.priority_chunk_cap":  6,
	"pipeline.max_context_chunks":  24,
	"pipeline.max_links":           5,
	"pipeline.selection_strategy":  "keywords",
	"pipeline.intent_strategy":     "keywords",
	"pipeline.confidence_formula":  "overlap",
	"pipeline.follow_up_threshold": 0.3,
	"pipeline.render_html":         false,
	"pipeline.keywords_file":       "",

	"alerts.enabled":   false,
	"alerts.region":    "ap-south-1",
	"alerts.topic_arn": "",

	"camunda.enabled":         false,
	"camunda.broker_address":  "",
	"camunda.plaintext":       true,
	"camunda.max_jobs_active": 5,
	"camunda.timeout":         30000,
	"camunda.request_timeout": 30000,

	"logging.level":  "info",
	"logging.format": "json",

	"metrics.enabled": true,
}

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// applies environment overrides and validates the result.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // the per-environment file is optional

	return finish(v)
}

// LoadFromFile reads exactly one config file.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig honours the conventional variable names used by the
// model SDKs and hosting platforms.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Model.APIKey == "" {
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "ANTHROPIC_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.Model.APIKey = val
				break
			}
		}
	}
	if cfg.Model.Project == "" {
		if val := os.Getenv("GOOGLE_CLOUD_PROJECT"); val != "" {
			cfg.Model.Project = val
		}
	}
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

func validateConfig(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	switch cfg.Knowledge.Source {
	case "file":
		if cfg.Knowledge.Root == "" {
			return fmt.Errorf("knowledge.root is required for the file source")
		}
	case "elasticsearch":
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required")
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" || cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres host, database and user are required")
		}
	}

	if cfg.Knowledge.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when knowledge.cache is enabled")
	}

	switch cfg.Model.Provider {
	case "gemini":
		if cfg.Model.Backend == "vertex" && cfg.Model.Project == "" {
			return fmt.Errorf("model.project is required for the vertex backend")
		}
		if cfg.Model.Backend != "vertex" && cfg.Model.APIKey == "" {
			return fmt.Errorf("model.api_key is required for the gemini backend")
		}
	case "anthropic":
		if cfg.Model.APIKey == "" {
			return fmt.Errorf("model.api_key is required for the anthropic provider")
		}
	case "gateway":
		if cfg.Model.BaseURL == "" {
			return fmt.Errorf("model.base_url is required for the gateway provider")
		}
	}

	if cfg.Pipeline.PriorityChunkCap < cfg.Pipeline.ChunkCap {
		return fmt.Errorf("pipeline.priority_chunk_cap must be >= pipeline.chunk_cap")
	}
	if cfg.Alerts.Enabled && cfg.Alerts.TopicARN == "" {
		return fmt.Errorf("alerts.topic_arn is required when alerts are enabled")
	}
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
