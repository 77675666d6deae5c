package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

const (
	defaultTopSkills       = 5
	defaultGenerateTimeout = 25 * time.Second
)

// TextGenerator is the outbound text-generation service.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// LLMGenerator adapts the go-kit LLM client to TextGenerator.
type LLMGenerator struct {
	Client *llm.Client
}

func (g *LLMGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	return g.Client.Complete(ctx, "", prompt,
		llm.WithChatMaxTokens(maxTokens),
		llm.WithChatTemperature(temperature),
	)
}

// RankSkills returns the top n skills by score, descending. Ties break by
// name so the ranking is stable across runs.
func RankSkills(skills []SkillScore, n int) []SkillScore {
	ranked := append([]SkillScore(nil), skills...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// GenerateNarrative produces the guidance narrative for a resolved profile.
// It never fails: a timeout, service error, or unusable completion falls back
// to the deterministic template built from the personality type and top
// skills, tagged OriginFallback.
func GenerateNarrative(ctx context.Context, p ResolvedProfile, topN int) (string, Origin) {
	if topN <= 0 {
		topN = defaultTopSkills
	}
	top := RankSkills(p.Skills, topN)

	text, err := callGenerator(ctx, buildGuidancePrompt(p, top))
	if err != nil {
		metrics.GenerationFallbacks.Add(1)
		slog.Warn("generator: falling back to template",
			slog.String("type", p.PersonalityType),
			slog.Any("error", err))
		return fallbackNarrative(p, top), OriginFallback
	}
	return text, OriginGenerated
}

// callGenerator races the external call against the wall-clock budget. The
// losing call is abandoned: its goroutine finishes in the background and the
// buffered channel keeps it from leaking.
func callGenerator(ctx context.Context, prompt string) (string, error) {
	if cfg.Generator == nil {
		return "", errGeneratorUnavailable
	}
	timeout := cfg.GenerateTimeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}

	// Everything below, the limiter wait included, runs under one budget:
	// callCtx bounds the wait and the timer (started now, not after the
	// wait) bounds the whole attempt. Wait returns immediately when the
	// deadline cannot be met, so a drained bucket costs a fallback, not a
	// stall.
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	if cfg.GenerateLimiter != nil {
		if err := cfg.GenerateLimiter.Wait(callCtx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	metrics.LLMCalls.Add(1)
	go func() {
		raw, err := cfg.Generator.Generate(callCtx, prompt, cfg.LLMMaxTokens, cfg.LLMTemperature)
		ch <- result{raw, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			metrics.LLMErrors.Add(1)
			return "", r.err
		}
		text := CleanNarrative(r.text)
		if text == "" {
			metrics.LLMErrors.Add(1)
			return "", errEmptyCompletion
		}
		return text, nil
	case <-timer.C:
		metrics.LLMErrors.Add(1)
		return "", errGenerateTimeout
	case <-ctx.Done():
		metrics.LLMErrors.Add(1)
		return "", ctx.Err()
	}
}

// buildGuidancePrompt embeds the personality type, ranked skills, and
// preferences into the guidance prompt template.
func buildGuidancePrompt(p ResolvedProfile, top []SkillScore) string {
	profile, ok := typeProfiles[p.PersonalityType]
	if !ok {
		profile = genericTypeProfile
	}

	var skills strings.Builder
	for _, s := range top {
		fmt.Fprintf(&skills, "- %s (%.0f%%)\n", s.Name, s.Score*100)
	}

	prefs := ""
	pr := p.Preferences
	if len(pr.Interests) > 0 || len(pr.Values) > 0 || pr.CareerGoals != "" {
		prefs = fmt.Sprintf(preferencesSection,
			joinOrNone(pr.Interests),
			joinOrNone(pr.Values),
			orNone(pr.CareerGoals))
	}

	return fmt.Sprintf(guidancePrompt, p.PersonalityType, profile.Title, skills.String(), prefs)
}

// fallbackNarrative builds the deterministic template narrative. Same profile
// in, same text out — no clock, no randomness.
func fallbackNarrative(p ResolvedProfile, top []SkillScore) string {
	profile, ok := typeProfiles[p.PersonalityType]
	if !ok {
		profile = genericTypeProfile
	}

	names := skillNames(top)
	var sb strings.Builder
	fmt.Fprintf(&sb, "As %s (%s), your natural strengths center on %s.",
		profile.Title, p.PersonalityType, profile.Strengths)
	if len(names) > 0 {
		fmt.Fprintf(&sb, " Your strongest self-rated skills are %s, and building on them will compound faster than patching weaker areas.",
			joinNatural(names))
	}
	fmt.Fprintf(&sb, "\n\nCareer directions that tend to fit this profile include %s.",
		joinNatural(profile.Careers))
	sb.WriteString(" Pick the one closest to your current experience and take one concrete step this month: a small project, a course, or a conversation with someone already doing the work.")
	if goals := strings.TrimSpace(p.Preferences.CareerGoals); goals != "" {
		fmt.Fprintf(&sb, "\n\nKeep your stated goal in focus: %s.", goals)
	}
	return sb.String()
}

func skillNames(skills []SkillScore) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none given"
	}
	return strings.Join(items, ", ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none given"
	}
	return s
}

// joinNatural joins items as "a, b and c".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
