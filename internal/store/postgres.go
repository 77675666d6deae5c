// Package store persists assessment profiles and guidance artifacts.
// Two backends: Postgres for multi-user deployments, SQLite for local
// single-user installs. Both satisfy engine.ProfileStore.
package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nerkoux/vocate/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore holds the pgx connection pool for assessment storage.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("assessment postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Info("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// FindProfile returns the persisted profile for a user, or nil if none exists.
func (s *PostgresStore) FindProfile(ctx context.Context, userID string) (*engine.AssessmentProfile, error) {
	var (
		personalityType string
		ratingsJSON     []byte
		prefsJSON       []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT personality_type, skill_ratings, preferences
		 FROM assessment_profiles WHERE user_id = $1`, userID,
	).Scan(&personalityType, &ratingsJSON, &prefsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile %s: %w", userID, err)
	}

	p := &engine.AssessmentProfile{PersonalityType: personalityType}
	if len(ratingsJSON) > 0 {
		if err := json.Unmarshal(ratingsJSON, &p.SkillRatings); err != nil {
			return nil, fmt.Errorf("decode skill ratings for %s: %w", userID, err)
		}
	}
	if len(prefsJSON) > 0 && string(prefsJSON) != "{}" {
		var prefs engine.Preferences
		if err := json.Unmarshal(prefsJSON, &prefs); err != nil {
			return nil, fmt.Errorf("decode preferences for %s: %w", userID, err)
		}
		p.Preferences = &prefs
	}
	return p, nil
}

// UpsertProfile writes the profile for a user, replacing any previous one.
func (s *PostgresStore) UpsertProfile(ctx context.Context, userID string, p engine.AssessmentProfile) error {
	ratingsJSON, _ := json.Marshal(p.SkillRatings)
	prefs := p.Preferences
	if prefs == nil {
		prefs = &engine.Preferences{}
	}
	prefsJSON, _ := json.Marshal(prefs)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO assessment_profiles (user_id, personality_type, skill_ratings, preferences, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   personality_type = EXCLUDED.personality_type,
		   skill_ratings = EXCLUDED.skill_ratings,
		   preferences = EXCLUDED.preferences,
		   updated_at = now()`,
		userID, p.PersonalityType, ratingsJSON, prefsJSON)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", userID, err)
	}
	return nil
}

// FindArtifact returns the latest persisted guidance artifact for a user,
// or nil if none exists.
func (s *PostgresStore) FindArtifact(ctx context.Context, userID string) (*engine.GuidanceArtifact, error) {
	var (
		a             engine.GuidanceArtifact
		resourcesJSON []byte
		origin        string
		generatedAt   time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT fingerprint, narrative, resources, origin, generated_at
		 FROM guidance_artifacts WHERE user_id = $1`, userID,
	).Scan(&a.Fingerprint, &a.NarrativeText, &resourcesJSON, &origin, &generatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find artifact %s: %w", userID, err)
	}

	if len(resourcesJSON) > 0 {
		if err := json.Unmarshal(resourcesJSON, &a.Resources); err != nil {
			return nil, fmt.Errorf("decode resources for %s: %w", userID, err)
		}
	}
	a.Origin = engine.Origin(origin)
	a.GeneratedAt = generatedAt
	return &a, nil
}

// UpsertArtifact writes the guidance artifact for a user, replacing any
// previous one.
func (s *PostgresStore) UpsertArtifact(ctx context.Context, userID string, a engine.GuidanceArtifact) error {
	resourcesJSON, _ := json.Marshal(a.Resources)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO guidance_artifacts (user_id, fingerprint, narrative, resources, origin, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE SET
		   fingerprint = EXCLUDED.fingerprint,
		   narrative = EXCLUDED.narrative,
		   resources = EXCLUDED.resources,
		   origin = EXCLUDED.origin,
		   generated_at = EXCLUDED.generated_at`,
		userID, a.Fingerprint, a.NarrativeText, resourcesJSON, string(a.Origin), a.GeneratedAt)
	if err != nil {
		return fmt.Errorf("upsert artifact %s: %w", userID, err)
	}
	return nil
}
