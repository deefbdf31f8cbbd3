package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		ListenPort      int `yaml:"listen_port"`
		RateLimitPerSec int `yaml:"rate_limit_per_sec"`
		RateLimitBurst  int `yaml:"rate_limit_burst"`
	} `yaml:"server"`

	Snapshot struct {
		URL                 string `yaml:"url"`
		File                string `yaml:"file"`
		FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"`
		CacheTTLSeconds     int    `yaml:"cache_ttl_seconds"`
	} `yaml:"snapshot"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Audit struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"audit"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.ListenPort == 0 {
		cfg.Server.ListenPort = 8080
	}
	if cfg.Server.RateLimitPerSec == 0 {
		cfg.Server.RateLimitPerSec = 20
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 40
	}
	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			cfg.Audit.Path = "data/hallkal_audit.db"
		}
		if err = os.MkdirAll(filepath.Dir(cfg.Audit.Path), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) FetchTimeout() time.Duration {
	if c.Snapshot.FetchTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Snapshot.FetchTimeoutSeconds) * time.Second
}

func (c *Config) SnapshotCacheTTL() time.Duration {
	if c.Snapshot.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Snapshot.CacheTTLSeconds) * time.Second
}
