package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	ListenAddr string              `json:"listen_addr" yaml:"listen_addr"`
	Judge      JudgeConfig         `json:"judge" yaml:"judge"`
	Cache      CacheConfig         `json:"cache" yaml:"cache"`
	Reward     RewardConfig        `json:"reward" yaml:"reward"`
	Security   SecurityConfig      `json:"security" yaml:"security"`
	Observer   ObservabilityConfig `json:"observability" yaml:"observability"`
	Limits     LimitConfig         `json:"limits" yaml:"limits"`
}

type JudgeConfig struct {
	BaseURL       string `json:"base_url" yaml:"base_url"`
	APIKey        string `json:"api_key" yaml:"api_key"`
	Model         string `json:"model" yaml:"model"`
	TimeoutSec    int    `json:"timeout_sec" yaml:"timeout_sec"`
	MinIntervalMS int    `json:"min_interval_ms" yaml:"min_interval_ms"`
}

type CacheConfig struct {
	// Path is the append-only NDJSON judgement log. Ignored when DSN is set.
	Path           string `json:"path" yaml:"path"`
	DSN            string `json:"dsn" yaml:"dsn"`
	MaxConns       int32  `json:"max_conns" yaml:"max_conns"`
	MigrationsPath string `json:"migrations_path" yaml:"migrations_path"`
}

type RewardConfig struct {
	SafetyWeight float64 `json:"safety_weight" yaml:"safety_weight"`
	ClampMin     float64 `json:"clamp_min" yaml:"clamp_min"`
	ClampMax     float64 `json:"clamp_max" yaml:"clamp_max"`
}

type SecurityConfig struct {
	// AdminTokenHash is the bcrypt hash of the admin token; the plain token is
	// never part of the configuration.
	AdminTokenHash string `json:"admin_token_hash" yaml:"admin_token_hash"`
}

type ObservabilityConfig struct {
	OTLPEndpoint string  `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	ServiceName  string  `json:"service_name" yaml:"service_name"`
	SampleRatio  float64 `json:"sample_ratio" yaml:"sample_ratio"`
}

type LimitConfig struct {
	ScoreRPM int `json:"score_rpm" yaml:"score_rpm"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr: ":8080",
		Judge: JudgeConfig{
			BaseURL:       "https://api.deepseek.com",
			Model:         "deepseek-chat",
			TimeoutSec:    60,
			MinIntervalMS: 200,
		},
		Cache: CacheConfig{
			Path:           "data/cache/judgements.jsonl",
			MaxConns:       10,
			MigrationsPath: "./migrations",
		},
		Reward: RewardConfig{
			SafetyWeight: 0.5,
			ClampMin:     -3.0,
			ClampMax:     2.0,
		},
		Observer: ObservabilityConfig{
			ServiceName: "medsafe-api",
			SampleRatio: 1,
		},
		Limits: LimitConfig{
			ScoreRPM: 60,
		},
	}
}

func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json config: %w", err)
		}
	default:
		var yamlErr error
		if yamlErr = yaml.Unmarshal(data, &cfg); yamlErr == nil {
			break
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.New("config format not recognized (expected yaml/json)")
		}
	}
	normalizeConfig(&cfg)
	return cfg, nil
}

func normalizeConfig(cfg *ServerConfig) {
	if cfg == nil {
		return
	}
	defaults := DefaultServerConfig()
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = defaults.ListenAddr
	}
	if strings.TrimSpace(cfg.Judge.BaseURL) == "" {
		cfg.Judge.BaseURL = defaults.Judge.BaseURL
	}
	if strings.TrimSpace(cfg.Judge.Model) == "" {
		cfg.Judge.Model = defaults.Judge.Model
	}
	if cfg.Judge.TimeoutSec <= 0 {
		cfg.Judge.TimeoutSec = defaults.Judge.TimeoutSec
	}
	if cfg.Judge.MinIntervalMS < 0 {
		cfg.Judge.MinIntervalMS = defaults.Judge.MinIntervalMS
	}
	if strings.TrimSpace(cfg.Cache.DSN) == "" && strings.TrimSpace(cfg.Cache.Path) == "" {
		cfg.Cache.Path = defaults.Cache.Path
	}
	if cfg.Cache.MaxConns <= 0 {
		cfg.Cache.MaxConns = defaults.Cache.MaxConns
	}
	if strings.TrimSpace(cfg.Cache.MigrationsPath) == "" {
		cfg.Cache.MigrationsPath = defaults.Cache.MigrationsPath
	}
	if cfg.Reward.SafetyWeight <= 0 {
		cfg.Reward.SafetyWeight = defaults.Reward.SafetyWeight
	}
	if cfg.Reward.ClampMin >= cfg.Reward.ClampMax {
		cfg.Reward.ClampMin = defaults.Reward.ClampMin
		cfg.Reward.ClampMax = defaults.Reward.ClampMax
	}
	if cfg.Observer.SampleRatio <= 0 || cfg.Observer.SampleRatio > 1 {
		cfg.Observer.SampleRatio = 1
	}
	if strings.TrimSpace(cfg.Observer.ServiceName) == "" {
		cfg.Observer.ServiceName = defaults.Observer.ServiceName
	}
	if cfg.Limits.ScoreRPM <= 0 {
		cfg.Limits.ScoreRPM = defaults.Limits.ScoreRPM
	}
}
