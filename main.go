// vocate — assessment aggregation & career guidance service.
//
// Resolves assessment profiles from persisted, inline, and client-local
// sources, generates a personality-and-skill-aware guidance narrative via an
// external LLM (with a deterministic template fallback), synthesizes learning
// resources, and caches artifacts by profile fingerprint.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"

	"github.com/nerkoux/vocate/internal/engine"
	"github.com/nerkoux/vocate/internal/guidanceserver"
	"github.com/nerkoux/vocate/internal/store"
)

var (
	version  = "dev"
	httpPort = env.Str("PORT", "8890")
)

func main() {
	initEngine()

	slog.Info("starting vocate",
		slog.String("port", httpPort),
		slog.String("version", version),
	)

	app := guidanceserver.New()
	if err := app.Listen(":" + httpPort); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 1024),
		GenerateTimeout:      env.Duration("GENERATE_TIMEOUT", 25*time.Second),
		TopSkills:            env.Int("TOP_SKILLS", 5),
		SkillScaleMax:        env.Int("SKILL_SCALE_MAX", 5),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	}

	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	c.Generator = &engine.LLMGenerator{Client: client}

	if rps := env.Float("GENERATE_RATE_LIMIT", 2); rps > 0 {
		c.GenerateLimiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 24*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	// Profile store: Postgres when DATABASE_URL is set, local SQLite otherwise.
	if dbURL := env.Str("DATABASE_URL", ""); dbURL != "" {
		st, err := store.ConnectPostgres(context.Background(), dbURL)
		if err != nil {
			slog.Warn("postgres store init failed, running without persistence", slog.Any("error", err))
		} else {
			engine.SetStore(st)
			slog.Info("postgres store initialized")
		}
	} else {
		path := store.DefaultSQLitePath()
		st, err := store.OpenSQLite(path)
		if err != nil {
			slog.Warn("sqlite store init failed, running without persistence", slog.Any("error", err))
		} else {
			engine.SetStore(st)
			slog.Info("sqlite store initialized", slog.String("path", path))
		}
	}
}
