// Package pipeline drives a generation request through its lifecycle:
// created, generating, sanitizing, compiling, verifying, then succeeded or
// failed. Each step is synchronous; retries happen only inside the
// generating step, across candidate models.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
	"github.com/harshilgor/prompt-to-3d/internal/infra"
	"github.com/harshilgor/prompt-to-3d/internal/openscad"
	"github.com/harshilgor/prompt-to-3d/internal/providers/llm"
	"github.com/harshilgor/prompt-to-3d/internal/scad"
	"github.com/harshilgor/prompt-to-3d/internal/storage"
)

// Generator selects a raw model response for a request. Implemented by
// llm.Selector.
type Generator interface {
	Select(ctx context.Context, req llm.GenerateRequest) (text string, model string, err error)
}

// Compiler turns a source file into a mesh file. Implemented by
// openscad.Compiler.
type Compiler interface {
	Compile(ctx context.Context, sourcePath, outPath string) (openscad.Result, error)
}

// Recorder persists terminal job outcomes. A nil Recorder disables history.
type Recorder interface {
	Record(ctx context.Context, rec JobRecord) error
}

// JobRecord is the durable trace of one finished job.
type JobRecord struct {
	JobID    string
	Status   domain.JobStatus
	Strategy domain.Strategy
	Model    string
	Prompt   string
	Error    string
	FileSize int64
}

// Failure is the structured terminal error of a pipeline run. It carries the
// best-effort sanitized source so callers can inspect what was attempted.
type Failure struct {
	Category domain.FailureCategory
	JobID    string
	Source   string
	Hint     string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Category, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Orchestrator coordinates the pipeline components. It is safe for
// concurrent use across distinct jobs; job-derived file paths guarantee no
// cross-job writes.
type Orchestrator struct {
	selector   Generator
	compiler   Compiler
	store      *storage.FileStore
	recorder   Recorder
	logger     infra.Logger
	configured bool
}

// New wires the orchestrator. configured reports whether the generation
// service credential is present; without it the generative path fails before
// any attempt, while the template path still works.
func New(selector Generator, compiler Compiler, store *storage.FileStore, recorder Recorder, logger infra.Logger, configured bool) *Orchestrator {
	return &Orchestrator{
		selector:   selector,
		compiler:   compiler,
		store:      store,
		recorder:   recorder,
		logger:     logger,
		configured: configured,
	}
}

// Run executes one generation request to a terminal state. The returned error
// is always a *Failure.
func (o *Orchestrator) Run(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		// Rejected before a job exists; zero downstream side effects.
		return nil, &Failure{
			Category: domain.FailureInput,
			Hint:     "supply a prompt, a reference image, or both",
			Err:      err,
		}
	}

	if source, params, ok := scad.FromTemplate(req); ok {
		return o.runTemplate(ctx, req, source, params)
	}

	if !o.configured {
		return nil, &Failure{
			Category: domain.FailureConfig,
			Hint:     "set GEMINI_API_KEY to enable free-form generation",
			Err:      fmt.Errorf("generation credential absent: %w", domain.ErrNotConfigured),
		}
	}

	job := domain.NewJob()
	o.transition(&job, domain.JobStatusGenerating)

	raw, model, err := o.selector.Select(ctx, llm.GenerateRequest{
		Prompt:    req.Prompt,
		Image:     req.Image,
		ImageMIME: req.ImageMIME,
	})
	if err != nil {
		return nil, o.fail(ctx, &job, req.Prompt, "", domain.StrategyGenerative, "", err, "every candidate model failed; try rephrasing the prompt")
	}

	o.transition(&job, domain.JobStatusSanitizing)
	source, err := scad.Sanitize(raw)
	if err != nil {
		return nil, o.fail(ctx, &job, req.Prompt, model, domain.StrategyGenerative, "", err, "the model response contained no OpenSCAD code")
	}

	params := map[string]any{"prompt": req.Prompt}
	if req.HasImage() {
		params["image_bytes"] = len(req.Image)
	}
	return o.compileAndVerify(ctx, &job, req, source, model, domain.StrategyGenerative, params)
}

func (o *Orchestrator) runTemplate(ctx context.Context, req domain.GenerationRequest, source string, params map[string]any) (*domain.GenerationResult, error) {
	job := domain.NewJob()
	o.logger.Info().Str("job_id", job.ID).Str("shape", req.TargetShape).Msg("pipeline: using deterministic template")
	return o.compileAndVerify(ctx, &job, req, source, "", domain.StrategyTemplate, params)
}

func (o *Orchestrator) compileAndVerify(ctx context.Context, job *domain.Job, req domain.GenerationRequest, source, model string, strategy domain.Strategy, params map[string]any) (*domain.GenerationResult, error) {
	// Source is persisted before compilation is invoked.
	sourcePath, err := o.store.Write(ctx, job.SourceName(), []byte(source))
	if err != nil {
		return nil, o.fail(ctx, job, req.Prompt, model, strategy, source, fmt.Errorf("persist source: %w", err), "")
	}

	o.transition(job, domain.JobStatusCompiling)
	outPath, err := o.store.Path(job.ArtifactName())
	if err != nil {
		return nil, o.fail(ctx, job, req.Prompt, model, strategy, source, fmt.Errorf("derive artifact path: %w", err), "")
	}
	compileRes, err := o.compiler.Compile(ctx, sourcePath, outPath)
	if err != nil {
		hint := strings.TrimSpace(compileRes.Stderr)
		if hint == "" {
			hint = "openscad rejected the generated source"
		}
		return nil, o.fail(ctx, job, req.Prompt, model, strategy, source, err, hint)
	}

	o.transition(job, domain.JobStatusVerifying)
	size, err := o.store.Size(job.ArtifactName())
	if err != nil || size == 0 {
		// The compiler reported success but left nothing usable behind.
		return nil, o.fail(ctx, job, req.Prompt, model, strategy, source,
			fmt.Errorf("compiler exited cleanly but artifact is absent or empty: %w", domain.ErrArtifactMissing), "")
	}

	o.transition(job, domain.JobStatusSucceeded)
	result := &domain.GenerationResult{
		JobID:      job.ID,
		STLPath:    job.ArtifactPath(),
		Source:     source,
		FileSize:   size,
		Model:      model,
		Strategy:   strategy,
		Parameters: params,
	}
	o.record(ctx, JobRecord{
		JobID:    job.ID,
		Status:   domain.JobStatusSucceeded,
		Strategy: strategy,
		Model:    model,
		Prompt:   req.Prompt,
		FileSize: size,
	})
	o.logger.Info().
		Str("job_id", job.ID).
		Str("strategy", string(strategy)).
		Int64("file_size", size).
		Dur("compile_time", compileRes.Duration).
		Msg("pipeline: job succeeded")
	return result, nil
}

func (o *Orchestrator) fail(ctx context.Context, job *domain.Job, prompt, model string, strategy domain.Strategy, source string, err error, hint string) *Failure {
	job.Status = domain.JobStatusFailed
	category := domain.CategoryOf(err)
	o.record(ctx, JobRecord{
		JobID:    job.ID,
		Status:   domain.JobStatusFailed,
		Strategy: strategy,
		Model:    model,
		Prompt:   prompt,
		Error:    err.Error(),
	})
	o.logger.Error().Err(err).Str("job_id", job.ID).Str("category", string(category)).Msg("pipeline: job failed")
	return &Failure{
		Category: category,
		JobID:    job.ID,
		Source:   source,
		Hint:     hint,
		Err:      err,
	}
}

func (o *Orchestrator) transition(job *domain.Job, next domain.JobStatus) {
	o.logger.Debug().Str("job_id", job.ID).Str("from", string(job.Status)).Str("to", string(next)).Msg("pipeline: transition")
	job.Status = next
}

func (o *Orchestrator) record(ctx context.Context, rec JobRecord) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, rec); err != nil {
		o.logger.Warn().Err(err).Str("job_id", rec.JobID).Msg("pipeline: job history write failed")
	}
}
