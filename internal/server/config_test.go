package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := LoadServerConfig("")
	if err != nil {
		t.Fatalf("empty path should yield defaults: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Judge.Model != "deepseek-chat" || cfg.Judge.TimeoutSec != 60 {
		t.Errorf("judge defaults wrong: %+v", cfg.Judge)
	}
	if cfg.Reward.SafetyWeight != 0.5 || cfg.Reward.ClampMin != -3.0 || cfg.Reward.ClampMax != 2.0 {
		t.Errorf("reward defaults wrong: %+v", cfg.Reward)
	}
	if cfg.Security.AdminTokenHash != "" {
		t.Errorf("no admin token hash should be set by default")
	}
}

func TestLoadServerConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: ":9999"
judge:
  model: deepseek-reasoner
  min_interval_ms: 500
reward:
  safety_weight: 0.7
limits:
  score_rpm: 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Judge.Model != "deepseek-reasoner" || cfg.Judge.MinIntervalMS != 500 {
		t.Errorf("judge overrides lost: %+v", cfg.Judge)
	}
	if cfg.Reward.SafetyWeight != 0.7 {
		t.Errorf("safety weight = %v", cfg.Reward.SafetyWeight)
	}
	if cfg.Limits.ScoreRPM != 10 {
		t.Errorf("score rpm = %d", cfg.Limits.ScoreRPM)
	}
	// Unset fields keep their defaults.
	if cfg.Judge.BaseURL != "https://api.deepseek.com" {
		t.Errorf("base url default lost: %q", cfg.Judge.BaseURL)
	}
}

func TestLoadServerConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"listen_addr": ":7070", "cache": {"dsn": "postgres://localhost/medsafe"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Cache.DSN != "postgres://localhost/medsafe" {
		t.Errorf("dsn lost: %q", cfg.Cache.DSN)
	}
}

func TestNormalizeConfigRepairsInvalidValues(t *testing.T) {
	cfg := ServerConfig{
		Reward:   RewardConfig{SafetyWeight: -1, ClampMin: 5, ClampMax: 1},
		Observer: ObservabilityConfig{SampleRatio: 3},
		Limits:   LimitConfig{ScoreRPM: -10},
	}
	normalizeConfig(&cfg)
	if cfg.Reward.SafetyWeight != 0.5 {
		t.Errorf("safety weight = %v", cfg.Reward.SafetyWeight)
	}
	if cfg.Reward.ClampMin != -3.0 || cfg.Reward.ClampMax != 2.0 {
		t.Errorf("clamp bounds not repaired: %+v", cfg.Reward)
	}
	if cfg.Observer.SampleRatio != 1 {
		t.Errorf("sample ratio = %v", cfg.Observer.SampleRatio)
	}
	if cfg.Limits.ScoreRPM != 60 {
		t.Errorf("score rpm = %d", cfg.Limits.ScoreRPM)
	}
}

func TestLoadServerConfigUnrecognized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.conf")
	if err := os.WriteFile(path, []byte(": not valid {{{"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadServerConfig(path); err == nil {
		t.Fatalf("expected an error for an unparseable file")
	}
}
