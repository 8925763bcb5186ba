// Package scad extracts and produces OpenSCAD source. Sanitization pulls the
// code payload out of a model response that may be wrapped in prose or fenced
// blocks; the template path generates parametric source without a model call.
package scad

import (
	"fmt"
	"strings"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
)

var fenceTags = []string{"openscad", "scad"}

// Sanitize extracts pure OpenSCAD source from a raw model response. A fenced
// block tagged openscad or scad (or untagged) wins; without a fence the raw
// text is returned with stray fence delimiters stripped. An empty extraction
// from non-empty input is reported as domain.ErrNoUsableSource rather than
// passed downstream.
func Sanitize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("empty model response: %w", domain.ErrNoUsableSource)
	}
	if body, ok := extractFencedBlock(trimmed); ok {
		body = strings.TrimSpace(body)
		if body == "" {
			return "", fmt.Errorf("fenced block contained no source: %w", domain.ErrNoUsableSource)
		}
		return body, nil
	}
	stripped := strings.TrimSpace(strings.ReplaceAll(trimmed, "```", ""))
	if stripped == "" {
		return "", fmt.Errorf("response reduced to nothing after stripping fences: %w", domain.ErrNoUsableSource)
	}
	return stripped, nil
}

// extractFencedBlock returns the inner content of the first code fence. The
// opening delimiter may carry one of the recognized language tags or none. A
// lone ``` that neither carries a tag, starts a new line, nor has a closing
// delimiter is a stray token, not a fence.
func extractFencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	opened := false
	for _, tag := range fenceTags {
		if len(rest) >= len(tag) && strings.EqualFold(rest[:len(tag)], tag) {
			rest = rest[len(tag):]
			opened = true
			break
		}
	}
	// Consume the remainder of the opening fence line.
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		if strings.TrimSpace(rest[:nl]) == "" {
			opened = true
		}
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		if !opened {
			return "", false
		}
		// Truncated response: fence runs to end of input.
		return rest, true
	}
	return rest[:end], true
}
