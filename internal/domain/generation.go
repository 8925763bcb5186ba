package domain

import "strings"

// GenerationRequest carries everything a caller may supply to the pipeline.
// The dimensional fields are advisory: they drive the deterministic template
// path and are inert on the generative path.
type GenerationRequest struct {
	Prompt      string
	Image       []byte
	ImageMIME   string
	TargetShape string
	HeightMM    float64
	WidthMM     float64
	DepthMM     float64
	WallThickMM float64
	Pattern     string
}

// HasImage reports whether a reference image accompanies the prompt.
func (r GenerationRequest) HasImage() bool {
	return len(r.Image) > 0
}

// Validate enforces the entry invariant: at least one of prompt or image must
// be present.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" && !r.HasImage() {
		return ErrInvalidInput
	}
	return nil
}

// GenerationResult is the success shape shared by both pipeline paths.
type GenerationResult struct {
	JobID      string
	STLPath    string
	Source     string
	FileSize   int64
	Model      string
	Strategy   Strategy
	Parameters map[string]any
}
