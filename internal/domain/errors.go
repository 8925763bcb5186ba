package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotConfigured       = errors.New("service not configured")
	ErrGenerationExhausted = errors.New("generation exhausted")
	ErrNoUsableSource      = errors.New("generation produced no usable source")
	ErrCompilationFailed   = errors.New("compilation failed")
	ErrCompileTimeout      = errors.New("compilation timed out")
	ErrArtifactMissing     = errors.New("artifact missing")
	ErrNotFound            = errors.New("not found")
)

// FailureCategory labels the failure domain a pipeline error originated from.
// Handlers key on it when mapping errors to HTTP responses.
type FailureCategory string

const (
	FailureInput      FailureCategory = "input_error"
	FailureConfig     FailureCategory = "configuration_error"
	FailureGeneration FailureCategory = "generation_exhausted"
	FailureSanitize   FailureCategory = "sanitization_empty"
	FailureCompile    FailureCategory = "compilation_failed"
	FailureNoArtifact FailureCategory = "artifact_missing"
	FailureInternal   FailureCategory = "internal_error"
)

// CategoryOf maps an error to its failure category. Timeouts count as
// compilation failures; anything unrecognized is internal.
func CategoryOf(err error) FailureCategory {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return FailureInput
	case errors.Is(err, ErrNotConfigured):
		return FailureConfig
	case errors.Is(err, ErrGenerationExhausted):
		return FailureGeneration
	case errors.Is(err, ErrNoUsableSource):
		return FailureSanitize
	case errors.Is(err, ErrCompilationFailed), errors.Is(err, ErrCompileTimeout):
		return FailureCompile
	case errors.Is(err, ErrArtifactMissing):
		return FailureNoArtifact
	default:
		return FailureInternal
	}
}
