package engine

import "errors"

// ErrMissingPersonalityType is the only resolution error surfaced to callers:
// no source supplied a personality type, so guidance cannot be generated.
var ErrMissingPersonalityType = errors.New("personality type is required")

// Generation-side errors. These never leave the generator — every one of them
// resolves into the fallback narrative.
var (
	errGeneratorUnavailable = errors.New("no text generator configured")
	errGenerateTimeout      = errors.New("generation timed out")
	errEmptyCompletion      = errors.New("generator returned empty text")
)
