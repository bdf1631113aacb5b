package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"claimsight/pkg/platform/middleware/metadata"
)

// Model providers understood by the analysis gateway.
const (
	ProviderFake   = "fake"
	ProviderGemini = "gemini"
)

// Document store backends.
const (
	DocumentsPlaceholder = "placeholder"
	DocumentsMemory      = "memory"
	DocumentsS3          = "s3"
)

// Config is the full runtime configuration of the service.
type Config struct {
	Server      Server            `yaml:"server"`
	LLM         LLMConfig         `yaml:"llm"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Documents   DocumentsConfig   `yaml:"documents"`
	Auth        AuthConfig        `yaml:"auth"`
	Workflow    WorkflowConfig    `yaml:"workflow"`
	Explanation ExplanationConfig `yaml:"explanation"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string `yaml:"addr"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	SeedDemo bool   `yaml:"seed_demo_claims"`

	// TrustedProxies are the CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// LLMConfig selects and tunes the hosted model.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DatabaseConfig enables the Postgres claim store and activity journal when URL is set.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

// RedisConfig enables the shared explanation cache when URL is set.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// KafkaConfig enables the activity event publisher when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// DocumentsConfig selects where uploaded claim documents are kept.
type DocumentsConfig struct {
	Backend   string `yaml:"backend"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// AuthConfig enables bearer-token identity when JWTSecret is set.
// Required rejects anonymous requests. AdminToken guards the admin routes,
// which stay disabled while it is empty.
type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	Issuer     string `yaml:"issuer"`
	Required   bool   `yaml:"required"`
	AdminToken string `yaml:"admin_token"`
}

// WorkflowConfig bounds the submission workflow.
type WorkflowConfig struct {
	MaxConcurrentChecks int `yaml:"max_concurrent_checks"`
}

// ExplanationConfig tunes explanation caching and retry.
type ExplanationConfig struct {
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	CacheSize     int           `yaml:"cache_size"`
	RetryAttempts int           `yaml:"retry_attempts"`
}

// RateLimitConfig caps model-backed requests per client and window.
// A zero limit disables that rule.
type RateLimitConfig struct {
	Submissions  int           `yaml:"submissions"`
	Explanations int           `yaml:"explanations"`
	Window       time.Duration `yaml:"window"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Server: Server{
			Addr:     ":8080",
			Env:      "local",
			LogLevel: "info",
		},
		LLM: LLMConfig{
			Provider: ProviderFake,
			Model:    "gemini-2.0-flash",
			Timeout:  30 * time.Second,
		},
		Database: DatabaseConfig{MaxConns: 10},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{Topic: "claimsight.claim-activity"},
		Documents: DocumentsConfig{
			Backend: DocumentsPlaceholder,
			Region:  "us-east-1",
			Bucket:  "claimsight-documents",
		},
		Auth:     AuthConfig{Issuer: "claimsight"},
		Workflow: WorkflowConfig{MaxConcurrentChecks: 4},
		Explanation: ExplanationConfig{
			CacheTTL:      10 * time.Minute,
			CacheSize:     512,
			RetryAttempts: 3,
		},
		RateLimit: RateLimitConfig{
			Submissions:  20,
			Explanations: 60,
			Window:       time.Minute,
		},
	}
}

// Load reads .env, then the optional YAML file named by CLAIMSIGHT_CONFIG,
// then environment overrides, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("CLAIMSIGHT_CONFIG")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Addr = firstNonEmpty(env("CLAIMSIGHT_ADDR"), portAddr(env("PORT")), cfg.Server.Addr)
	cfg.Server.Env = firstNonEmpty(env("APP_ENV"), cfg.Server.Env)
	cfg.Server.LogLevel = firstNonEmpty(env("LOG_LEVEL"), cfg.Server.LogLevel)

	cfg.LLM.Provider = strings.ToLower(firstNonEmpty(env("LLM_PROVIDER"), cfg.LLM.Provider))
	cfg.LLM.APIKey = firstNonEmpty(env("GEMINI_API_KEY"), env("GOOGLE_API_KEY"), cfg.LLM.APIKey)
	cfg.LLM.Model = firstNonEmpty(env("LLM_MODEL"), cfg.LLM.Model)

	cfg.Database.URL = firstNonEmpty(env("DATABASE_URL"), cfg.Database.URL)
	cfg.Redis.URL = firstNonEmpty(env("REDIS_URL"), cfg.Redis.URL)
	if brokers := env("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	cfg.Kafka.Topic = firstNonEmpty(env("KAFKA_TOPIC"), cfg.Kafka.Topic)
	if proxies := env("TRUSTED_PROXIES"); proxies != "" {
		cfg.Server.TrustedProxies = splitList(proxies)
	}

	cfg.Documents.Backend = strings.ToLower(firstNonEmpty(env("DOCUMENT_STORE"), cfg.Documents.Backend))
	cfg.Documents.Endpoint = firstNonEmpty(env("DOCUMENT_S3_ENDPOINT"), cfg.Documents.Endpoint)
	cfg.Documents.Region = firstNonEmpty(env("DOCUMENT_S3_REGION"), cfg.Documents.Region)
	cfg.Documents.AccessKey = firstNonEmpty(env("DOCUMENT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), cfg.Documents.AccessKey)
	cfg.Documents.SecretKey = firstNonEmpty(env("DOCUMENT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), cfg.Documents.SecretKey)
	cfg.Documents.Bucket = firstNonEmpty(env("DOCUMENT_S3_BUCKET"), cfg.Documents.Bucket)

	cfg.Auth.JWTSecret = firstNonEmpty(env("AUTH_JWT_SECRET"), cfg.Auth.JWTSecret)
	cfg.Auth.AdminToken = firstNonEmpty(env("ADMIN_TOKEN"), cfg.Auth.AdminToken)

	var errs []error
	if raw := env("LLM_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		errs = append(errs, wrapEnv("LLM_TIMEOUT", err))
		cfg.LLM.Timeout = d
	}
	if raw := env("EXPLANATION_CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		errs = append(errs, wrapEnv("EXPLANATION_CACHE_TTL", err))
		cfg.Explanation.CacheTTL = d
	}
	if raw := env("WORKFLOW_MAX_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		errs = append(errs, wrapEnv("WORKFLOW_MAX_CONCURRENCY", err))
		cfg.Workflow.MaxConcurrentChecks = n
	}
	if raw := env("DOCUMENT_S3_USE_SSL"); raw != "" {
		v, err := strconv.ParseBool(raw)
		errs = append(errs, wrapEnv("DOCUMENT_S3_USE_SSL", err))
		cfg.Documents.UseSSL = v
	}
	if raw := env("SEED_DEMO_CLAIMS"); raw != "" {
		v, err := strconv.ParseBool(raw)
		errs = append(errs, wrapEnv("SEED_DEMO_CLAIMS", err))
		cfg.Server.SeedDemo = v
	}
	if raw := env("RATE_LIMIT_SUBMISSIONS"); raw != "" {
		n, err := strconv.Atoi(raw)
		errs = append(errs, wrapEnv("RATE_LIMIT_SUBMISSIONS", err))
		cfg.RateLimit.Submissions = n
	}
	if raw := env("RATE_LIMIT_EXPLANATIONS"); raw != "" {
		n, err := strconv.Atoi(raw)
		errs = append(errs, wrapEnv("RATE_LIMIT_EXPLANATIONS", err))
		cfg.RateLimit.Explanations = n
	}
	if raw := env("AUTH_REQUIRED"); raw != "" {
		v, err := strconv.ParseBool(raw)
		errs = append(errs, wrapEnv("AUTH_REQUIRED", err))
		cfg.Auth.Required = v
	}
	return errors.Join(errs...)
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if _, err := metadata.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		errs = append(errs, err)
	}
	switch c.LLM.Provider {
	case ProviderFake:
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when LLM_PROVIDER=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM provider %q", c.LLM.Provider))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("LLM timeout must be positive"))
	}
	switch c.Documents.Backend {
	case DocumentsPlaceholder, DocumentsMemory:
	case DocumentsS3:
		if c.Documents.Endpoint == "" || c.Documents.Bucket == "" {
			errs = append(errs, errors.New("DOCUMENT_S3_ENDPOINT and DOCUMENT_S3_BUCKET are required for the s3 document store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown document store %q", c.Documents.Backend))
	}
	if c.Auth.Required && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required when AUTH_REQUIRED=true"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set"))
	}
	if c.Workflow.MaxConcurrentChecks < 1 {
		errs = append(errs, errors.New("workflow concurrency must be at least 1"))
	}
	if (c.RateLimit.Submissions > 0 || c.RateLimit.Explanations > 0) && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.Explanation.CacheTTL <= 0 {
		errs = append(errs, errors.New("explanation cache TTL must be positive"))
	}
	return errors.Join(errs...)
}

// IsLocal reports whether the service runs in a developer environment.
func (c *Config) IsLocal() bool {
	return strings.EqualFold(c.Server.Env, "local") || strings.EqualFold(c.Server.Env, "dev")
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func portAddr(port string) string {
	if port == "" || strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func wrapEnv(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("invalid %s: %w", key, err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
