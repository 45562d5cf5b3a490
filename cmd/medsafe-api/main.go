package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"medsafe-rl/internal/deepseek"
	"medsafe-rl/internal/judge"
	"medsafe-rl/internal/reward"
	"medsafe-rl/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to server config YAML/JSON")
	listen := flag.String("listen", "", "Optional listen address override")
	flag.Parse()

	cfg, err := server.LoadServerConfig(*configPath)
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if key := strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY")); key != "" {
		cfg.Judge.APIKey = key
	}
	if base := strings.TrimSpace(os.Getenv("DEEPSEEK_API_BASE")); base != "" {
		cfg.Judge.BaseURL = base
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := server.SetupObservability(rootCtx, cfg.Observer)
	if err != nil {
		slog.Error("setup observability failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = obs.Shutdown(ctx)
	}()

	engine := reward.NewEngine(reward.Config{
		SafetyWeight: cfg.Reward.SafetyWeight,
		ClampMin:     cfg.Reward.ClampMin,
		ClampMax:     cfg.Reward.ClampMax,
	})

	var judgeCache *judge.Cache
	if strings.TrimSpace(cfg.Judge.APIKey) != "" {
		store, cleanup, err := buildJudgeStore(rootCtx, cfg)
		if err != nil {
			slog.Error("build judgement store failed", "error", err)
			os.Exit(1)
		}
		defer cleanup()

		client := judge.NewDeepSeekJudge(deepseek.NewClient(deepseek.Config{
			BaseURL: cfg.Judge.BaseURL,
			APIKey:  cfg.Judge.APIKey,
			Model:   cfg.Judge.Model,
			Timeout: time.Duration(cfg.Judge.TimeoutSec) * time.Second,
		}))
		judgeCache, err = judge.NewCache(rootCtx, client, store, judge.CacheConfig{
			MinInterval: time.Duration(cfg.Judge.MinIntervalMS) * time.Millisecond,
		})
		if err != nil {
			slog.Error("replay judgement cache failed", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("judge API key not configured; judge endpoints disabled")
	}

	auth := server.NewAuth(cfg)
	api := server.NewAPI(cfg, auth, engine, judgeCache, obs)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-rootCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	slog.Info("medsafe API listening", "listen", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func buildJudgeStore(ctx context.Context, cfg server.ServerConfig) (judge.Store, func(), error) {
	if strings.TrimSpace(cfg.Cache.DSN) == "" {
		return judge.NewFileStore(cfg.Cache.Path), func() {}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Cache.DSN)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Cache.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Cache.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := judge.RunMigrations(ctx, pool, cfg.Cache.MigrationsPath); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return judge.NewPgStore(pool), pool.Close, nil
}
