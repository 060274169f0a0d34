package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./lexcheck.db"
	} `yaml:"database"`

	Analysis struct {
		Sources      []string `yaml:"sources"`       // files, dirs or globs
		DocumentType string   `yaml:"document_type"` // "" = detect from text
		RulePacks    []string `yaml:"rule_packs"`    // extra YAML pattern packs
		Workers      int      `yaml:"workers"`       // batch parallelism
	} `yaml:"analysis"`

	Classifier struct {
		Endpoint    string        `yaml:"endpoint"` // "" = rules only
		Timeout     time.Duration `yaml:"timeout"`
		MaxAttempts int           `yaml:"max_attempts"`
		Backoff     time.Duration `yaml:"backoff"`
		CacheSize   int           `yaml:"cache_size"` // 0 disables the cache
	} `yaml:"classifier"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./reports"
		Format string `yaml:"format"`  // "text"|"json"|"html"
	} `yaml:"reporting"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`

	Server struct {
		Addr            string        `yaml:"addr"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		SessionDuration time.Duration `yaml:"session_duration"`
		MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	} `yaml:"server"`

	NATS struct {
		URL     string `yaml:"url"` // "" = publishing disabled
		Subject string `yaml:"subject"`
	} `yaml:"nats"`

	Watch struct {
		Debounce   time.Duration `yaml:"debounce"`
		Extensions []string      `yaml:"extensions"`
	} `yaml:"watch"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./lexcheck.db"
	c.Analysis.Workers = 4
	c.Classifier.Timeout = 10 * time.Second
	c.Classifier.MaxAttempts = 3
	c.Classifier.Backoff = 200 * time.Millisecond
	c.Classifier.CacheSize = 1024
	c.Reporting.OutDir = "./reports"
	c.Reporting.Format = "text"
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	c.Server.Addr = ":8080"
	c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	c.Server.SessionDuration = 12 * time.Hour
	c.Server.MaxUploadBytes = 16 << 20
	c.NATS.Subject = "lexcheck.runs"
	c.Watch.Debounce = 500 * time.Millisecond
	c.Watch.Extensions = []string{".txt", ".md", ".docx", ".html", ".htm"}
	return c
}

// LoadConfig layers the YAML file at path (optional) and LEXCHECK_* env
// variables over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&c); err != nil {
		return c, err
	}
	return c, nil
}

// Env overrides (simple, explicit)
func applyEnv(c *Config) error {
	if v := os.Getenv("LEXCHECK_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("LEXCHECK_DOCUMENT_TYPE"); v != "" {
		c.Analysis.DocumentType = v
	}
	if v := os.Getenv("LEXCHECK_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LEXCHECK_WORKERS: %w", err)
		}
		c.Analysis.Workers = n
	}
	if v := os.Getenv("LEXCHECK_CLASSIFIER_ENDPOINT"); v != "" {
		c.Classifier.Endpoint = v
	}
	if v := os.Getenv("LEXCHECK_CLASSIFIER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LEXCHECK_CLASSIFIER_TIMEOUT: %w", err)
		}
		c.Classifier.Timeout = d
	}
	if v := os.Getenv("LEXCHECK_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("LEXCHECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LEXCHECK_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("LEXCHECK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LEXCHECK_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LEXCHECK_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
