package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nerkoux/vocate/internal/engine"
)

// SQLiteStore is the local assessment database for deployments without
// Postgres. Single file, single writer.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath returns the conventional local database location.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".vocate", "assessments.db")
}

// OpenSQLite opens (or creates) the local assessment database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("sqlite: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS assessment_profiles (
		user_id          TEXT PRIMARY KEY,
		personality_type TEXT NOT NULL DEFAULT '',
		skill_ratings    TEXT NOT NULL DEFAULT '{}',
		preferences      TEXT NOT NULL DEFAULT '{}',
		updated_at       TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS guidance_artifacts (
		user_id      TEXT PRIMARY KEY,
		fingerprint  TEXT NOT NULL,
		narrative    TEXT NOT NULL,
		resources    TEXT NOT NULL DEFAULT '[]',
		origin       TEXT NOT NULL DEFAULT 'generated',
		generated_at TEXT NOT NULL
	)`)
	return err
}

// FindProfile returns the persisted profile for a user, or nil if none exists.
func (s *SQLiteStore) FindProfile(ctx context.Context, userID string) (*engine.AssessmentProfile, error) {
	var (
		personalityType string
		ratingsJSON     string
		prefsJSON       string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT personality_type, skill_ratings, preferences
		 FROM assessment_profiles WHERE user_id = ?`, userID,
	).Scan(&personalityType, &ratingsJSON, &prefsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find profile %s: %w", userID, err)
	}

	p := &engine.AssessmentProfile{PersonalityType: personalityType}
	if ratingsJSON != "" {
		if err := json.Unmarshal([]byte(ratingsJSON), &p.SkillRatings); err != nil {
			return nil, fmt.Errorf("sqlite: decode skill ratings for %s: %w", userID, err)
		}
	}
	if prefsJSON != "" && prefsJSON != "{}" {
		var prefs engine.Preferences
		if err := json.Unmarshal([]byte(prefsJSON), &prefs); err != nil {
			return nil, fmt.Errorf("sqlite: decode preferences for %s: %w", userID, err)
		}
		p.Preferences = &prefs
	}
	return p, nil
}

// UpsertProfile writes the profile for a user, replacing any previous one.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, userID string, p engine.AssessmentProfile) error {
	ratingsJSON, _ := json.Marshal(p.SkillRatings)
	prefs := p.Preferences
	if prefs == nil {
		prefs = &engine.Preferences{}
	}
	prefsJSON, _ := json.Marshal(prefs)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessment_profiles (user_id, personality_type, skill_ratings, preferences, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   personality_type = excluded.personality_type,
		   skill_ratings = excluded.skill_ratings,
		   preferences = excluded.preferences,
		   updated_at = excluded.updated_at`,
		userID, p.PersonalityType, string(ratingsJSON), string(prefsJSON),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite: upsert profile %s: %w", userID, err)
	}
	return nil
}

// FindArtifact returns the persisted guidance artifact for a user, or nil if
// none exists.
func (s *SQLiteStore) FindArtifact(ctx context.Context, userID string) (*engine.GuidanceArtifact, error) {
	var (
		a             engine.GuidanceArtifact
		resourcesJSON string
		origin        string
		generatedAt   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint, narrative, resources, origin, generated_at
		 FROM guidance_artifacts WHERE user_id = ?`, userID,
	).Scan(&a.Fingerprint, &a.NarrativeText, &resourcesJSON, &origin, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find artifact %s: %w", userID, err)
	}

	if resourcesJSON != "" {
		if err := json.Unmarshal([]byte(resourcesJSON), &a.Resources); err != nil {
			return nil, fmt.Errorf("sqlite: decode resources for %s: %w", userID, err)
		}
	}
	a.Origin = engine.Origin(origin)
	if t, err := time.Parse(time.RFC3339Nano, generatedAt); err == nil {
		a.GeneratedAt = t
	}
	return &a, nil
}

// UpsertArtifact writes the guidance artifact for a user, replacing any
// previous one.
func (s *SQLiteStore) UpsertArtifact(ctx context.Context, userID string, a engine.GuidanceArtifact) error {
	resourcesJSON, _ := json.Marshal(a.Resources)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO guidance_artifacts (user_id, fingerprint, narrative, resources, origin, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   fingerprint = excluded.fingerprint,
		   narrative = excluded.narrative,
		   resources = excluded.resources,
		   origin = excluded.origin,
		   generated_at = excluded.generated_at`,
		userID, a.Fingerprint, a.NarrativeText, string(resourcesJSON), string(a.Origin),
		a.GeneratedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: upsert artifact %s: %w", userID, err)
	}
	return nil
}
