package engine

import (
	"log/slog"
	"sort"
	"strings"
)

const defaultSkillScaleMax = 5

// defaultSkills is substituted when no source supplies any skill ratings,
// rated mid-range so they neither dominate nor vanish from the ranking.
var defaultSkills = []string{
	"Communication",
	"Problem Solving",
	"Teamwork",
	"Time Management",
	"Adaptability",
}

// ResolveProfile merges up to three profile sources into one canonical
// profile. Precedence per field: persisted > inline > local. Any source may
// be nil. The only hard failure is a missing personality type; every other
// gap is filled with defaults.
func ResolveProfile(persisted, inline, local *AssessmentProfile) (ResolvedProfile, error) {
	srcs := []*AssessmentProfile{persisted, inline, local}

	var out ResolvedProfile
	for _, s := range srcs {
		if s == nil || s.PersonalityType == "" {
			continue
		}
		out.PersonalityType = strings.ToUpper(strings.TrimSpace(s.PersonalityType))
		break
	}
	if out.PersonalityType == "" {
		return ResolvedProfile{}, ErrMissingPersonalityType
	}

	var ratings map[string]int
	for _, s := range srcs {
		if s != nil && len(s.SkillRatings) > 0 {
			ratings = s.SkillRatings
			break
		}
	}
	if len(ratings) == 0 {
		mid := (skillScaleDefault() + 1) / 2
		ratings = make(map[string]int, len(defaultSkills))
		for _, name := range defaultSkills {
			ratings[name] = mid
		}
		out.DefaultSkills = true
		slog.Info("resolver: no skill ratings from any source, using default set",
			slog.String("type", out.PersonalityType),
			slog.Int("count", len(defaultSkills)))
	}

	upper := scaleUpper(ratings)
	out.Skills = make([]SkillScore, 0, len(ratings))
	for name, rating := range ratings {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out.Skills = append(out.Skills, SkillScore{
			Name:   name,
			Rating: rating,
			Score:  normalizeRating(rating, upper),
		})
	}
	sort.Slice(out.Skills, func(i, j int) bool { return out.Skills[i].Name < out.Skills[j].Name })

	for _, s := range srcs {
		if s != nil && s.Preferences != nil {
			out.Preferences = *s.Preferences
			break
		}
	}

	return out, nil
}

// MergeProfiles overlays the fields overlay supplies onto base and returns
// the combined profile. Fields overlay leaves empty keep base's value, so a
// partial assessment submission never wipes what an earlier step stored.
func MergeProfiles(base, overlay *AssessmentProfile) *AssessmentProfile {
	if base == nil {
		return overlay
	}
	if overlay == nil {
		return base
	}
	merged := *base
	if overlay.PersonalityType != "" {
		merged.PersonalityType = overlay.PersonalityType
	}
	if len(overlay.SkillRatings) > 0 {
		merged.SkillRatings = overlay.SkillRatings
	}
	if overlay.Preferences != nil {
		merged.Preferences = overlay.Preferences
	}
	return &merged
}

func skillScaleDefault() int {
	if cfg.SkillScaleMax > 0 {
		return cfg.SkillScaleMax
	}
	return defaultSkillScaleMax
}

// scaleUpper picks the rating scale upper bound. The configured scale is the
// default; a wider intake scale (1–10, 1–100) is inferred when ratings exceed it.
func scaleUpper(ratings map[string]int) int {
	upper := skillScaleDefault()
	maxSeen := 0
	for _, r := range ratings {
		if r > maxSeen {
			maxSeen = r
		}
	}
	switch {
	case maxSeen > 10 && maxSeen > upper:
		upper = 100
	case maxSeen > upper:
		upper = 10
	}
	return upper
}

// normalizeRating maps a raw rating onto [0, 1], clamping out-of-range values.
func normalizeRating(rating, upper int) float64 {
	if rating < 0 {
		rating = 0
	}
	if rating > upper {
		rating = upper
	}
	return float64(rating) / float64(upper)
}
