package engine

import "time"

// Preferences carries the free-form assessment answers that shape guidance.
type Preferences struct {
	Interests    []string `json:"interests,omitempty"`
	Values       []string `json:"values,omitempty"`
	Philosophy   string   `json:"philosophy,omitempty"`
	CareerGoals  string   `json:"careerGoals,omitempty"`
	CustomSkills []string `json:"customSkills,omitempty"`
}

// AssessmentProfile is one source's view of a user's assessment data.
// Sources: persisted store, inline request, client-local snapshot.
type AssessmentProfile struct {
	PersonalityType string         `json:"personalityType,omitempty"`
	SkillRatings    map[string]int `json:"skills,omitempty"`
	Preferences     *Preferences   `json:"preferences,omitempty"`
}

// SkillScore is a resolved skill: the raw intake rating plus its 0–1 normalized score.
type SkillScore struct {
	Name   string  `json:"name"`
	Rating int     `json:"rating"`
	Score  float64 `json:"score"`
}

// ResolvedProfile is the canonical merged profile the pipeline operates on.
// Skills are sorted by name so downstream iteration is deterministic.
type ResolvedProfile struct {
	PersonalityType string       `json:"personalityType"`
	Skills          []SkillScore `json:"skills"`
	Preferences     Preferences  `json:"preferences"`
	DefaultSkills   bool         `json:"defaultSkills,omitempty"` // fixed default set was substituted
}

// Origin tags how a guidance narrative was produced.
type Origin string

const (
	OriginGenerated Origin = "generated"
	OriginFallback  Origin = "fallback"
)

// LearningResource is one curated learning-resource descriptor.
type LearningResource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Difficulty  string `json:"difficulty"`
	Platform    string `json:"platform"`
}

// GuidanceArtifact is the immutable output of one pipeline run.
type GuidanceArtifact struct {
	NarrativeText string             `json:"narrativeText"`
	Resources     []LearningResource `json:"resources"`
	Fingerprint   string             `json:"fingerprint"`
	GeneratedAt   time.Time          `json:"generatedAt"`
	Origin        Origin             `json:"origin"`
}

// GuidanceRequest is the inline guidance request body. All fields are optional;
// missing fields fall through to the persisted profile.
type GuidanceRequest struct {
	PersonalityType string         `json:"personalityType,omitempty"`
	Skills          map[string]int `json:"skills,omitempty"`
	Preferences     *Preferences   `json:"preferences,omitempty"`
}

// GuidanceResponse is the sync guidance response body.
type GuidanceResponse struct {
	CareerGuidance    string             `json:"careerGuidance"`
	LearningResources []LearningResource `json:"learningResources"`
}
