// matchd 是候选人排序引擎的独立服务进程。
// 资料/拉黑/匹配/决策数据与结果缓存都挂在同一个 KV 后端上：
// 配置了 Redis 走 Redis，否则退回内存存储（开发与单测）。
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rushteam/matchkit/config"
	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/engine"
	"github.com/rushteam/matchkit/feature"
	"github.com/rushteam/matchkit/filter"
	"github.com/rushteam/matchkit/server"
	"github.com/rushteam/matchkit/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var kv core.KeyValueStore
	if cfg.Redis.Addr != "" {
		rs, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			logger.Error("connect redis", "addr", cfg.Redis.Addr, "err", err)
			os.Exit(1)
		}
		kv = rs
	} else {
		logger.Warn("redis not configured, using in-memory store")
		kv = store.NewMemoryStore()
	}
	defer kv.Close()

	adapter := filter.NewStoreAdapter(kv)
	resolver := &filter.Resolver{
		Blocks:         adapter,
		Matches:        adapter,
		Decisions:      adapter,
		DecisionWindow: time.Duration(cfg.Engine.DecisionWindowSec) * time.Second,
		Timeout:        time.Duration(cfg.Engine.LookupTimeoutMS) * time.Millisecond,
	}

	var activity feature.ActivityProvider
	if cfg.Feast.Host != "" {
		provider, err := feature.NewFeastProvider(cfg.Feast.Host, cfg.Feast.Port, cfg.Feast.Project, cfg.Feast.Feature)
		if err != nil {
			// 特征服务连不上不拦启动，活跃度信号缺席而已
			logger.Warn("feast unavailable", "host", cfg.Feast.Host, "err", err)
		} else {
			activity = provider
			defer provider.Close()
		}
	}

	eng := &engine.Engine{
		Profiles: store.NewProfileStore(kv),
		Resolver: resolver,
		Cache:    store.NewRecommendCache(kv),
		Activity: activity,
		Rules:    cfg.Engine.Rules,
		PoolSize: cfg.Engine.PoolSize,
		CacheTTL: time.Duration(cfg.Engine.CacheTTLSeconds) * time.Second,
		Logger:   logger,
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(eng, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("matchd listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
