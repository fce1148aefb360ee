package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"glbview/pkg/types"
)

// Defaults applied by ApplyDefaults when fields are unset.
const (
	DefaultAddr         = ":3000"
	DefaultModelsDir    = "public/models"
	DefaultModelsPath   = "/models"
	DefaultLoadTimeout  = 8 * time.Second
	DefaultMaxUploadMB  = 256
	DefaultSessionTTL   = 30 * time.Minute
	DefaultLogLevel     = "info"
	DefaultWidgetScript = "https://cdn.jsdelivr.net/npm/@google/model-viewer/dist/model-viewer.min.js"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr         string   `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir    string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	ModelsPath   string   `json:"models_path" yaml:"models_path" toml:"models_path"`
	LoadTimeout  string   `json:"load_timeout" yaml:"load_timeout" toml:"load_timeout"`
	MaxUploadMB  int      `json:"max_upload_mb" yaml:"max_upload_mb" toml:"max_upload_mb"`
	SessionTTL   string   `json:"session_ttl" yaml:"session_ttl" toml:"session_ttl"`
	WidgetScript string   `json:"widget_script" yaml:"widget_script" toml:"widget_script"`
	LogLevel     string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogJSON      bool     `json:"log_json" yaml:"log_json" toml:"log_json"`
	CORSEnabled  bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	// Builtin models head every catalog. Empty unless configured.
	Builtin []BuiltinModel `json:"builtin" yaml:"builtin" toml:"builtin"`
}

// BuiltinModel is a statically configured catalog entry.
type BuiltinModel struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	URL         string `json:"url" yaml:"url" toml:"url"`
	Description string `json:"description" yaml:"description" toml:"description"`
}

// BuiltinDescriptors converts the configured built-in entries, skipping
// entries without a URL.
func (c Config) BuiltinDescriptors() []types.ModelDescriptor {
	var out []types.ModelDescriptor
	for _, b := range c.Builtin {
		if strings.TrimSpace(b.URL) == "" {
			continue
		}
		name := b.Name
		if name == "" {
			name = b.URL
		}
		out = append(out, types.ModelDescriptor{Name: name, URL: b.URL, Description: b.Description})
	}
	return out
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GLBVIEW_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("GLBVIEW_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("GLBVIEW_MODELS_DIR"); v != "" {
		c.ModelsDir = v
	}
	if v := getenv("GLBVIEW_MODELS_PATH"); v != "" {
		c.ModelsPath = v
	}
	if v := getenv("GLBVIEW_LOAD_TIMEOUT"); v != "" {
		c.LoadTimeout = v
	}
	if v := getenv("GLBVIEW_MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxUploadMB = n
		}
	}
	if v := getenv("GLBVIEW_SESSION_TTL"); v != "" {
		c.SessionTTL = v
	}
	if v := getenv("GLBVIEW_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("GLBVIEW_LOG_JSON"); v != "" {
		c.LogJSON = v == "1" || strings.EqualFold(v, "true")
	}
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.ModelsPath == "" {
		c.ModelsPath = DefaultModelsPath
	}
	c.ModelsPath = "/" + strings.Trim(c.ModelsPath, "/")
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = DefaultMaxUploadMB
	}
	if c.WidgetScript == "" {
		c.WidgetScript = DefaultWidgetScript
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// LoadTimeoutDuration parses LoadTimeout, falling back to the default when
// unset or malformed.
func (c Config) LoadTimeoutDuration() time.Duration {
	return parseDuration(c.LoadTimeout, DefaultLoadTimeout)
}

// SessionTTLDuration parses SessionTTL. A value of "0" disables reaping.
func (c Config) SessionTTLDuration() time.Duration {
	return parseDuration(c.SessionTTL, DefaultSessionTTL)
}

// MaxUploadBytes returns the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = DefaultMaxUploadMB
	}
	return int64(mb) << 20
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if s == "0" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
