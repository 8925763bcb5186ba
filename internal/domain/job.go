package domain

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus enumerates the pipeline lifecycle states. A job moves strictly
// forward through the non-terminal states and ends in either succeeded or
// failed; failed is reachable from every non-terminal state.
type JobStatus string

const (
	JobStatusCreated    JobStatus = "created"
	JobStatusGenerating JobStatus = "generating"
	JobStatusSanitizing JobStatus = "sanitizing"
	JobStatusCompiling  JobStatus = "compiling"
	JobStatusVerifying  JobStatus = "verifying"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// Strategy discriminates which pipeline path produced a result.
type Strategy string

const (
	StrategyGenerative Strategy = "generative"
	StrategyTemplate   Strategy = "template"
)

// Job is one end-to-end invocation of the generation pipeline. The identifier
// is assigned at request entry and never changes; both file names derive from
// it deterministically.
type Job struct {
	ID        string
	Status    JobStatus
	CreatedAt time.Time
}

// NewJob allocates a job with a unique identifier: a UTC timestamp prefix for
// operator-friendly sorting plus a random suffix for uniqueness when two
// requests land in the same instant.
func NewJob() Job {
	now := time.Now().UTC()
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return Job{
		ID:        fmt.Sprintf("%s-%s", now.Format("20060102T150405"), suffix),
		Status:    JobStatusCreated,
		CreatedAt: now,
	}
}

// SourceName returns the file name holding the job's OpenSCAD source.
func (j Job) SourceName() string {
	return j.ID + ".scad"
}

// ArtifactName returns the file name of the job's compiled STL.
func (j Job) ArtifactName() string {
	return j.ID + ".stl"
}

// ArtifactPath returns the public retrieval path for the compiled artifact.
func (j Job) ArtifactPath() string {
	return path.Join("/models", j.ArtifactName())
}

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}
