package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ProfileStore persists assessment profiles and guidance artifacts.
// Implementations: Postgres (multi-user) and SQLite (local single-user).
type ProfileStore interface {
	FindProfile(ctx context.Context, userID string) (*AssessmentProfile, error)
	UpsertProfile(ctx context.Context, userID string, p AssessmentProfile) error
	FindArtifact(ctx context.Context, userID string) (*GuidanceArtifact, error)
	UpsertArtifact(ctx context.Context, userID string, a GuidanceArtifact) error
}

// Package-level store singleton, set from main.go. Nil means cache-only mode.
var store ProfileStore

// SetStore sets the package-level profile store.
func SetStore(s ProfileStore) { store = s }

// GetStore returns the package-level profile store (may be nil).
func GetStore() ProfileStore { return store }

// generateGroup collapses concurrent generation for the same fingerprint
// into a single run; all waiters share its artifact.
var generateGroup singleflight.Group

// maxNarrativeRunes caps stored narratives; anything longer is a runaway
// completion.
const maxNarrativeRunes = 8000

// persistRetry covers transient store failures on artifact writes.
var persistRetry = RetryConfig{
	MaxRetries:  2,
	InitialWait: 200 * time.Millisecond,
	MaxWait:     2 * time.Second,
	Multiplier:  2.0,
}

// Resolve runs the full pipeline synchronously: merge sources, fingerprint,
// cache check, generate, synthesize, cache write, persist. The only error it
// returns is ErrMissingPersonalityType; generation failures degrade to the
// fallback narrative instead.
func Resolve(ctx context.Context, userID string, inline, local *AssessmentProfile) (GuidanceArtifact, error) {
	metrics.GuidanceRequests.Add(1)

	var persisted *AssessmentProfile
	if store != nil && userID != "" {
		p, err := store.FindProfile(ctx, userID)
		if err != nil {
			metrics.StoreErrors.Add(1)
			slog.Warn("pipeline: profile lookup failed", slog.String("user", userID), slog.Any("error", err))
		} else {
			persisted = p
		}
	}

	profile, err := ResolveProfile(persisted, inline, local)
	if err != nil {
		return GuidanceArtifact{}, err
	}

	fp := Fingerprint(profile)
	if artifact, ok := CacheGet(ctx, fp); ok {
		// The cache may have been warmed by an anonymous or other-user
		// request; this user still needs the artifact on record for
		// later retrieval. Upserts are idempotent.
		persistArtifact(ctx, userID, artifact)
		return artifact, nil
	}

	// The flight outlives any single caller: its result is cached and
	// shared, so a cancelled waiter must not poison it for the rest.
	flightCtx := context.WithoutCancel(ctx)
	v, _, _ := generateGroup.Do(fp, func() (any, error) {
		return runGeneration(flightCtx, userID, profile, fp), nil
	})
	artifact := v.(GuidanceArtifact)
	return artifact, nil
}

// runGeneration is the cache-miss path. Singleflight guarantees at most one
// concurrent run per fingerprint, so the cache write and the persisted
// artifact come from exactly one generation.
func runGeneration(ctx context.Context, userID string, profile ResolvedProfile, fp string) GuidanceArtifact {
	// A just-finished flight may have filled the cache between our miss and
	// this call.
	if artifact, ok := CacheGet(ctx, fp); ok {
		persistArtifact(ctx, userID, artifact)
		return artifact
	}

	topN := cfg.TopSkills
	if topN <= 0 {
		topN = defaultTopSkills
	}

	narrative, origin := GenerateNarrative(ctx, profile, topN)
	if origin == OriginFallback {
		// Prefer slightly stale real guidance over the generic template.
		if stale, ok := CacheGetStale(ctx, fp); ok && stale.Origin == OriginGenerated {
			metrics.StaleServed.Add(1)
			slog.Info("pipeline: serving stale artifact after generation failure", slog.String("fingerprint", fp))
			persistArtifact(ctx, userID, stale)
			return stale
		}
	}

	top := RankSkills(profile.Skills, topN)
	artifact := GuidanceArtifact{
		NarrativeText: TruncateRunes(narrative, maxNarrativeRunes, "…"),
		Resources:     SynthesizeResources(skillNames(top), profile.Preferences.Interests),
		Fingerprint:   fp,
		GeneratedAt:   time.Now().UTC(),
		Origin:        origin,
	}
	CachePut(ctx, fp, artifact)
	persistArtifact(ctx, userID, artifact)
	return artifact
}

// persistArtifact writes the artifact for the requesting user, retrying
// transient store failures. No-op for anonymous callers or cache-only mode;
// failures are logged, never surfaced.
func persistArtifact(ctx context.Context, userID string, artifact GuidanceArtifact) {
	if store == nil || userID == "" {
		return
	}
	_, err := RetryDo(ctx, persistRetry, func() (struct{}, error) {
		return struct{}{}, store.UpsertArtifact(ctx, userID, artifact)
	})
	if err != nil {
		metrics.StoreErrors.Add(1)
		slog.Warn("pipeline: artifact persist failed", slog.String("user", userID), slog.Any("error", err))
	}
}

// TaskHandle tracks one asynchronous pipeline run.
type TaskHandle struct {
	id       string
	done     chan struct{}
	artifact GuidanceArtifact
	err      error
}

// ID returns the task identifier assigned at trigger time.
func (h *TaskHandle) ID() string { return h.id }

// Done is closed when the run completes.
func (h *TaskHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run completes or ctx is cancelled.
func (h *TaskHandle) Wait(ctx context.Context) (GuidanceArtifact, error) {
	select {
	case <-h.done:
		return h.artifact, h.err
	case <-ctx.Done():
		return GuidanceArtifact{}, ctx.Err()
	}
}

// Trigger runs the pipeline asynchronously and returns immediately. The
// handle lets callers and tests await the result; the HTTP layer just logs
// completion. Duplicate triggers for the same profile share one generation
// via the fingerprint singleflight.
func Trigger(userID string, inline, local *AssessmentProfile) *TaskHandle {
	metrics.TriggerRequests.Add(1)
	h := &TaskHandle{id: uuid.New().String(), done: make(chan struct{})}

	go func() {
		defer close(h.done)
		timeout := cfg.GenerateTimeout
		if timeout <= 0 {
			timeout = defaultGenerateTimeout
		}
		// Budget beyond the generation timeout covers store and cache writes.
		ctx, cancel := context.WithTimeout(context.Background(), timeout+10*time.Second)
		defer cancel()

		start := time.Now()
		h.artifact, h.err = Resolve(ctx, userID, inline, local)
		if h.err != nil {
			slog.Warn("trigger: pipeline failed",
				slog.String("task", h.id),
				slog.String("user", userID),
				slog.Any("error", h.err))
			return
		}
		slog.Info("trigger: guidance ready",
			slog.String("task", h.id),
			slog.String("user", userID),
			slog.String("origin", string(h.artifact.Origin)),
			slog.Duration("elapsed", time.Since(start)))
	}()
	return h
}
