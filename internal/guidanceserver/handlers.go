package guidanceserver

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nerkoux/vocate/internal/engine"
)

// userIDHeader carries the authenticated user identity set by the edge proxy.
// Empty means anonymous: no persisted profile lookup, no artifact persistence.
const userIDHeader = "X-User-ID"

// scoreRequest accepts both intake shapes: per-question letter responses or
// pre-summed axis scores.
type scoreRequest struct {
	Responses []string `json:"responses,omitempty"`
	EI        *int     `json:"ei,omitempty"`
	SN        *int     `json:"sn,omitempty"`
	TF        *int     `json:"tf,omitempty"`
	JP        *int     `json:"jp,omitempty"`
}

func handleScore(c *fiber.Ctx) error {
	engine.IncrScoreRequests()

	var req scoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var code string
	switch {
	case len(req.Responses) > 0:
		code = engine.ScoreLetters(req.Responses)
	case req.EI != nil || req.SN != nil || req.TF != nil || req.JP != nil:
		code = engine.ScoreAxes(deref(req.EI), deref(req.SN), deref(req.TF), deref(req.JP))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "responses or axis scores are required"})
	}

	return c.JSON(fiber.Map{"personalityType": code})
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func handleGuidance(c *fiber.Ctx) error {
	var req engine.GuidanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	userID := strings.TrimSpace(c.Get(userIDHeader))
	inline := inlineProfile(req)

	artifact, err := engine.Resolve(c.UserContext(), userID, inline, nil)
	if err != nil {
		if errors.Is(err, engine.ErrMissingPersonalityType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "please complete your personality assessment first"})
		}
		slog.Error("guidance request failed", slog.String("user", userID), slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	resources := artifact.Resources
	if resources == nil {
		resources = []engine.LearningResource{}
	}
	return c.JSON(engine.GuidanceResponse{
		CareerGuidance:    artifact.NarrativeText,
		LearningResources: resources,
	})
}

func handleAssessmentComplete(c *fiber.Ctx) error {
	var req engine.GuidanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	userID := strings.TrimSpace(c.Get(userIDHeader))
	inline := inlineProfile(req)

	// Save the submitted assessment before kicking off generation; the
	// results page re-loads it via GET /api/guidance/:userId later.
	// Assessments arrive in steps (personality first, skills later), so the
	// submission is merged over what is already stored rather than replacing
	// the row wholesale.
	if st := engine.GetStore(); st != nil && userID != "" && inline != nil {
		existing, err := st.FindProfile(c.UserContext(), userID)
		if err != nil {
			slog.Warn("assessment load failed", slog.String("user", userID), slog.Any("error", err))
		}
		merged := engine.MergeProfiles(existing, inline)
		if err := st.UpsertProfile(c.UserContext(), userID, *merged); err != nil {
			slog.Warn("assessment save failed", slog.String("user", userID), slog.Any("error", err))
		}
	}

	h := engine.Trigger(userID, inline, nil)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"taskId": h.ID(),
		"status": "started",
	})
}

func handleGetGuidance(c *fiber.Ctx) error {
	userID := c.Params("userId")

	st := engine.GetStore()
	if st == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "no persistent store configured"})
	}

	artifact, err := st.FindArtifact(c.UserContext(), userID)
	if err != nil {
		slog.Error("artifact lookup failed", slog.String("user", userID), slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	if artifact == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "guidance not generated yet"})
	}
	return c.JSON(artifact)
}

// inlineProfile converts a request body into an inline profile source.
// Returns nil when the body carried no assessment data at all.
func inlineProfile(req engine.GuidanceRequest) *engine.AssessmentProfile {
	if req.PersonalityType == "" && len(req.Skills) == 0 && req.Preferences == nil {
		return nil
	}
	return &engine.AssessmentProfile{
		PersonalityType: req.PersonalityType,
		SkillRatings:    req.Skills,
		Preferences:     req.Preferences,
	}
}
