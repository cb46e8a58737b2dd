// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Model     ModelConfig     `mapstructure:"model"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Camunda   CamundaConfig   `mapstructure:"camunda"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

// KnowledgeConfig selects where document records come from and how the
// in-memory snapshot is kept fresh.
type KnowledgeConfig struct {
	Source          string      `mapstructure:"source" validate:"oneof=file elasticsearch postgres"`
	Root            string      `mapstructure:"root"`
	Index           string      `mapstructure:"index"`
	Table           string      `mapstructure:"table"`
	RefreshSchedule string      `mapstructure:"refresh_schedule"`
	Watch           bool        `mapstructure:"watch"`
	Cache           CacheConfig `mapstructure:"cache"`
}

type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single URL shorthand
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ModelConfig configures the generative model collaborator.
type ModelConfig struct {
	Provider          string  `mapstructure:"provider" validate:"oneof=gemini anthropic gateway"`
	APIKey            string  `mapstructure:"api_key"`
	Backend           string  `mapstructure:"backend" validate:"omitempty,oneof=gemini vertex"`
	Project           string  `mapstructure:"project"`
	Location          string  `mapstructure:"location"`
	Name              string  `mapstructure:"name" validate:"required"`
	Temperature       float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens         int     `mapstructure:"max_tokens" validate:"gte=0"`
	Timeout           int     `mapstructure:"timeout"` // milliseconds
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseURL           string  `mapstructure:"base_url"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
}

// PipelineConfig holds the tunables of the answer composition stages.
type PipelineConfig struct {
	TopK              int     `mapstructure:"top_k" validate:"gte=1"`
	ChunkCap          int     `mapstructure:"chunk_cap" validate:"gte=1"`
	PriorityChunkCap  int     `mapstructure:"priority_chunk_cap" validate:"gte=1"`
	MaxContextChunks  int     `mapstructure:"max_context_chunks" validate:"gte=1"`
	MaxLinks          int     `mapstructure:"max_links" validate:"gte=1"`
	SelectionStrategy string  `mapstructure:"selection_strategy" validate:"oneof=keywords semantic"`
	IntentStrategy    string  `mapstructure:"intent_strategy" validate:"oneof=keywords model"`
	ConfidenceFormula string  `mapstructure:"confidence_formula" validate:"oneof=overlap tiered"`
	FollowUpThreshold float64 `mapstructure:"follow_up_threshold" validate:"gte=0,lte=1"`
	RenderHTML        bool    `mapstructure:"render_html"`
	KeywordsFile      string  `mapstructure:"keywords_file"`
}

// AlertsConfig controls knowledge-gap notifications.
type AlertsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
