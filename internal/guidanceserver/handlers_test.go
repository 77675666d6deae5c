package guidanceserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerkoux/vocate/internal/engine"
)

type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	return g.text, g.err
}

type fakeStore struct {
	mu        sync.Mutex
	profiles  map[string]engine.AssessmentProfile
	artifacts map[string]engine.GuidanceArtifact
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  make(map[string]engine.AssessmentProfile),
		artifacts: make(map[string]engine.GuidanceArtifact),
	}
}

func (f *fakeStore) FindProfile(ctx context.Context, userID string) (*engine.AssessmentProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) UpsertProfile(ctx context.Context, userID string, p engine.AssessmentProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID] = p
	return nil
}

func (f *fakeStore) FindArtifact(ctx context.Context, userID string) (*engine.GuidanceArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.artifacts[userID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeStore) UpsertArtifact(ctx context.Context, userID string, a engine.GuidanceArtifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts[userID] = a
	return nil
}

func setupApp(t *testing.T, gen engine.TextGenerator, store engine.ProfileStore) *fiber.App {
	t.Helper()
	engine.Init(engine.Config{
		Generator:       gen,
		GenerateTimeout: 2 * time.Second,
		TopSkills:       5,
		SkillScaleMax:   5,
	})
	engine.InitCache("", 24*time.Hour, 100, 5*time.Minute)
	engine.SetStore(store)
	return New()
}

func postJSON(t *testing.T, app *fiber.App, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), 10000)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	return out
}

func TestScoreEndpoint(t *testing.T) {
	a := setupApp(t, &stubGenerator{text: "x"}, nil)

	t.Run("letter responses", func(t *testing.T) {
		resp := postJSON(t, a, "/api/personality/score", map[string]any{
			"responses": []string{"I", "N", "T", "J"},
		}, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeJSON[map[string]string](t, resp)
		assert.Equal(t, "INTJ", body["personalityType"])
	})

	t.Run("axis scores", func(t *testing.T) {
		resp := postJSON(t, a, "/api/personality/score", map[string]any{
			"ei": 2, "sn": -1, "tf": 0, "jp": 3,
		}, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeJSON[map[string]string](t, resp)
		assert.Equal(t, "ENFJ", body["personalityType"])
	})

	t.Run("empty body rejected", func(t *testing.T) {
		resp := postJSON(t, a, "/api/personality/score", map[string]any{}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeJSON[map[string]string](t, resp)
		assert.NotEmpty(t, body["error"])
	})
}

func TestGuidanceEndpoint(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		a := setupApp(t, &stubGenerator{text: "Focus on backend engineering."}, nil)
		resp := postJSON(t, a, "/api/career-guidance", map[string]any{
			"personalityType": "INTJ",
			"skills":          map[string]int{"Go": 5, "SQL": 3},
		}, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeJSON[engine.GuidanceResponse](t, resp)
		assert.Equal(t, "Focus on backend engineering.", body.CareerGuidance)
		assert.Len(t, body.LearningResources, 8) // 2 skills x 4
	})

	t.Run("missing personality type", func(t *testing.T) {
		a := setupApp(t, &stubGenerator{text: "x"}, nil)
		resp := postJSON(t, a, "/api/career-guidance", map[string]any{
			"skills": map[string]int{"Go": 5},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeJSON[map[string]string](t, resp)
		assert.Contains(t, body["error"], "personality assessment")
	})

	t.Run("generation failure still returns 200", func(t *testing.T) {
		a := setupApp(t, &stubGenerator{err: assert.AnError}, nil)
		resp := postJSON(t, a, "/api/career-guidance", map[string]any{
			"personalityType": "ENFP",
		}, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeJSON[engine.GuidanceResponse](t, resp)
		assert.NotEmpty(t, body.CareerGuidance)
		assert.NotEmpty(t, body.LearningResources)
	})

	t.Run("persisted profile used via header", func(t *testing.T) {
		store := newFakeStore()
		store.profiles["u1"] = engine.AssessmentProfile{PersonalityType: "ISTP"}
		a := setupApp(t, &stubGenerator{text: "Hands-on roles suit you."}, store)

		resp := postJSON(t, a, "/api/career-guidance", map[string]any{},
			map[string]string{userIDHeader: "u1"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeJSON[engine.GuidanceResponse](t, resp)
		assert.Equal(t, "Hands-on roles suit you.", body.CareerGuidance)
	})
}

func TestAssessmentCompleteEndpoint(t *testing.T) {
	store := newFakeStore()
	a := setupApp(t, &stubGenerator{text: "Guidance."}, store)

	resp := postJSON(t, a, "/api/assessment/complete", map[string]any{
		"personalityType": "INTJ",
		"skills":          map[string]int{"Go": 5},
	}, map[string]string{userIDHeader: "u1"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "started", body["status"])
	assert.NotEmpty(t, body["taskId"])

	// The submitted assessment is saved synchronously.
	p, err := store.FindProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "INTJ", p.PersonalityType)

	// The artifact lands asynchronously.
	deadline := time.Now().Add(5 * time.Second)
	for {
		artifact, err := store.FindArtifact(context.Background(), "u1")
		require.NoError(t, err)
		if artifact != nil {
			assert.Equal(t, "Guidance.", artifact.NarrativeText)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("artifact never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestAssessmentCompleteSequentialSteps(t *testing.T) {
	store := newFakeStore()
	a := setupApp(t, &stubGenerator{text: "Guidance."}, store)

	// Step 1: the personality assessment lands first.
	resp := postJSON(t, a, "/api/assessment/complete", map[string]any{
		"personalityType": "INTJ",
	}, map[string]string{userIDHeader: "u1"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// Step 2: the skills assessment arrives separately and must not wipe
	// the stored personality type.
	resp = postJSON(t, a, "/api/assessment/complete", map[string]any{
		"skills": map[string]int{"Go": 5},
	}, map[string]string{userIDHeader: "u1"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	p, err := store.FindProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "INTJ", p.PersonalityType)
	assert.Equal(t, 5, p.SkillRatings["Go"])

	// The second trigger resolves against the merged profile: its artifact
	// carries resources for the submitted skill, not the default set.
	deadline := time.Now().Add(5 * time.Second)
	for {
		artifact, err := store.FindArtifact(context.Background(), "u1")
		require.NoError(t, err)
		if artifact != nil && resourcesMention(artifact.Resources, "Go") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("merged-profile artifact never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func resourcesMention(resources []engine.LearningResource, skill string) bool {
	for _, r := range resources {
		if strings.Contains(r.Title, skill) {
			return true
		}
	}
	return false
}

func TestGetGuidanceEndpoint(t *testing.T) {
	t.Run("not generated yet", func(t *testing.T) {
		a := setupApp(t, &stubGenerator{text: "x"}, newFakeStore())
		resp := get(t, a, "/api/guidance/u1")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("found", func(t *testing.T) {
		store := newFakeStore()
		store.artifacts["u1"] = engine.GuidanceArtifact{
			NarrativeText: "Saved guidance.",
			Fingerprint:   "gp:abc",
			Origin:        engine.OriginGenerated,
		}
		a := setupApp(t, &stubGenerator{text: "x"}, store)

		resp := get(t, a, "/api/guidance/u1")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeJSON[engine.GuidanceArtifact](t, resp)
		assert.Equal(t, "Saved guidance.", body.NarrativeText)
	})

	t.Run("no store configured", func(t *testing.T) {
		a := setupApp(t, &stubGenerator{text: "x"}, nil)
		resp := get(t, a, "/api/guidance/u1")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	a := setupApp(t, &stubGenerator{text: "x"}, nil)
	resp := get(t, a, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
