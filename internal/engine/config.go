package engine

import (
	"time"

	"golang.org/x/time/rate"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey       string
	LLMAPIBase      string
	LLMModel        string
	LLMTemperature  float64
	LLMMaxTokens    int
	GenerateTimeout time.Duration // wall-clock budget for one generation call
	TopSkills       int           // how many top-rated skills feed the prompt
	SkillScaleMax   int           // intake rating scale upper bound (ratings are 1..max)

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	Generator       TextGenerator // nil = fallback-only mode
	GenerateLimiter *rate.Limiter // nil = unlimited
}

var cfg Config

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.TopSkills <= 0 {
		c.TopSkills = defaultTopSkills
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = defaultGenerateTimeout
	}
	if c.SkillScaleMax <= 0 {
		c.SkillScaleMax = defaultSkillScaleMax
	}
	cfg = c
}
