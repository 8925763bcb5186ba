package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
	"github.com/harshilgor/prompt-to-3d/internal/openscad"
	"github.com/harshilgor/prompt-to-3d/internal/providers/llm"
	"github.com/harshilgor/prompt-to-3d/internal/storage"
)

type stubSelector struct {
	text  string
	model string
	err   error
	calls int
}

func (s *stubSelector) Select(ctx context.Context, req llm.GenerateRequest) (string, string, error) {
	s.calls++
	if s.err != nil {
		return "", "", s.err
	}
	return s.text, s.model, nil
}

type stubCompiler struct {
	mu       sync.Mutex
	output   []byte
	err      error
	stderr   string
	calls    int
	lastSrc  string
	skipFile bool
}

func (s *stubCompiler) Compile(ctx context.Context, sourcePath, outPath string) (openscad.Result, error) {
	s.mu.Lock()
	s.calls++
	s.lastSrc = sourcePath
	s.mu.Unlock()
	if s.err != nil {
		return openscad.Result{Stderr: s.stderr}, s.err
	}
	if !s.skipFile {
		output := s.output
		if output == nil {
			output = []byte("solid model")
		}
		if err := os.WriteFile(outPath, output, 0o644); err != nil {
			return openscad.Result{}, err
		}
	}
	return openscad.Result{Stdout: "ok"}, nil
}

type stubRecorder struct {
	mu      sync.Mutex
	records []JobRecord
}

func (s *stubRecorder) Record(ctx context.Context, rec JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func newTestOrchestrator(t *testing.T, selector Generator, compiler Compiler, recorder Recorder) (*Orchestrator, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return New(selector, compiler, store, recorder, zerolog.New(io.Discard), true), store
}

func TestRunRejectsEmptyRequestBeforeAnyCall(t *testing.T) {
	selector := &stubSelector{}
	compiler := &stubCompiler{}
	o, _ := newTestOrchestrator(t, selector, compiler, nil)

	_, err := o.Run(context.Background(), domain.GenerationRequest{})
	var failure *Failure
	if !errors.As(err, &failure) || failure.Category != domain.FailureInput {
		t.Fatalf("expected input failure, got %v", err)
	}
	if selector.calls != 0 || compiler.calls != 0 {
		t.Fatal("rejected request must have zero downstream side effects")
	}
}

func TestRunGenerativeSuccess(t *testing.T) {
	selector := &stubSelector{
		text:  "Sure!\n```openscad\nsphere(r = 20);\n```\nDone",
		model: "model-a",
	}
	compiler := &stubCompiler{}
	recorder := &stubRecorder{}
	o, store := newTestOrchestrator(t, selector, compiler, recorder)

	result, err := o.Run(context.Background(), domain.GenerationRequest{Prompt: "sphere radius 20mm"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Strategy != domain.StrategyGenerative {
		t.Fatalf("strategy = %q", result.Strategy)
	}
	if result.Source != "sphere(r = 20);" {
		t.Fatalf("source = %q", result.Source)
	}
	if result.FileSize == 0 {
		t.Fatal("file size must be positive")
	}
	if !strings.Contains(result.STLPath, result.JobID) {
		t.Fatalf("artifact path %q does not reference job id %q", result.STLPath, result.JobID)
	}
	if result.Model != "model-a" {
		t.Fatalf("model = %q", result.Model)
	}
	// Source was persisted before compilation.
	src, err := store.Read(result.JobID + ".scad")
	if err != nil || string(src) != "sphere(r = 20);" {
		t.Fatalf("persisted source mismatch: %q, %v", src, err)
	}
	if len(recorder.records) != 1 || recorder.records[0].Status != domain.JobStatusSucceeded {
		t.Fatalf("recorder = %+v", recorder.records)
	}
}

func TestRunGenerationExhausted(t *testing.T) {
	selector := &stubSelector{err: fmt.Errorf("all failed: %w", domain.ErrGenerationExhausted)}
	compiler := &stubCompiler{}
	o, _ := newTestOrchestrator(t, selector, compiler, nil)

	_, err := o.Run(context.Background(), domain.GenerationRequest{Prompt: "anything"})
	var failure *Failure
	if !errors.As(err, &failure) || failure.Category != domain.FailureGeneration {
		t.Fatalf("expected generation failure, got %v", err)
	}
	if compiler.calls != 0 {
		t.Fatal("compiler must not run after generation failure")
	}
}

func TestRunSanitizationEmpty(t *testing.T) {
	selector := &stubSelector{text: "``````", model: "model-a"}
	o, _ := newTestOrchestrator(t, selector, &stubCompiler{}, nil)

	_, err := o.Run(context.Background(), domain.GenerationRequest{Prompt: "anything"})
	var failure *Failure
	if !errors.As(err, &failure) || failure.Category != domain.FailureSanitize {
		t.Fatalf("expected sanitization failure, got %v", err)
	}
}

func TestRunCompileFailureCarriesSource(t *testing.T) {
	selector := &stubSelector{text: "```openscad\ncube(1\n```", model: "model-a"}
	compiler := &stubCompiler{
		err:    fmt.Errorf("openscad: syntax error: %w", domain.ErrCompilationFailed),
		stderr: "ERROR: Parser error",
	}
	o, store := newTestOrchestrator(t, selector, compiler, nil)

	_, err := o.Run(context.Background(), domain.GenerationRequest{Prompt: "broken"})
	var failure *Failure
	if !errors.As(err, &failure) || failure.Category != domain.FailureCompile {
		t.Fatalf("expected compile failure, got %v", err)
	}
	if failure.Source != "cube(1" {
		t.Fatalf("failure should carry sanitized source, got %q", failure.Source)
	}
	if failure.Hint != "ERROR: Parser error" {
		t.Fatalf("hint = %q", failure.Hint)
	}
	if _, sizeErr := store.Size(failure.JobID + ".stl"); sizeErr == nil {
		t.Fatal("no artifact may exist after compile failure")
	}
}

func TestRunArtifactMissingIsDistinctFromCompileFailure(t *testing.T) {
	selector := &stubSelector{text: "cube(1);", model: "model-a"}
	compiler := &stubCompiler{skipFile: true}
	o, _ := newTestOrchestrator(t, selector, compiler, nil)

	_, err := o.Run(context.Background(), domain.GenerationRequest{Prompt: "anything"})
	var failure *Failure
	if !errors.As(err, &failure) || failure.Category != domain.FailureNoArtifact {
		t.Fatalf("expected artifact-missing failure, got %v", err)
	}
}

func TestRunZeroLengthArtifactIsMissing(t *testing.T) {
	selector := &stubSelector{text: "cube(1);", model: "model-a"}
	compiler := &stubCompiler{output: []byte{}}
	o, _ := newTestOrchestrator(t, selector, compiler, nil)

	_, err := o.Run(context.Background(), domain.GenerationRequest{Prompt: "anything"})
	var failure *Failure
	if !errors.As(err, &failure) || failure.Category != domain.FailureNoArtifact {
		t.Fatalf("expected artifact-missing failure, got %v", err)
	}
}

func TestRunUnconfiguredFailsBeforeGeneration(t *testing.T) {
	selector := &stubSelector{}
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	o := New(selector, &stubCompiler{}, store, nil, zerolog.New(io.Discard), false)

	_, runErr := o.Run(context.Background(), domain.GenerationRequest{Prompt: "anything"})
	var failure *Failure
	if !errors.As(runErr, &failure) || failure.Category != domain.FailureConfig {
		t.Fatalf("expected configuration failure, got %v", runErr)
	}
	if selector.calls != 0 {
		t.Fatal("no generation attempt may happen without a credential")
	}
}

func TestRunTemplatePathSkipsGeneration(t *testing.T) {
	selector := &stubSelector{}
	compiler := &stubCompiler{}
	o, _ := newTestOrchestrator(t, selector, compiler, nil)

	result, err := o.Run(context.Background(), domain.GenerationRequest{TargetShape: "vase", HeightMM: 80, WidthMM: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Strategy != domain.StrategyTemplate {
		t.Fatalf("strategy = %q", result.Strategy)
	}
	if selector.calls != 0 {
		t.Fatal("template path must not invoke the model")
	}
	if compiler.calls != 1 {
		t.Fatalf("compiler calls = %d", compiler.calls)
	}
}

func TestRunConcurrentJobsDoNotCollide(t *testing.T) {
	selector := &stubSelector{text: "cube(1);", model: "model-a"}
	compiler := &stubCompiler{}
	o, _ := newTestOrchestrator(t, selector, compiler, nil)

	const n = 8
	results := make([]*domain.GenerationResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := o.Run(context.Background(), domain.GenerationRequest{Prompt: "anything"})
			if err != nil {
				t.Errorf("run %d: %v", i, err)
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for i, result := range results {
		if result == nil {
			t.Fatalf("run %d produced no result", i)
		}
		if _, dup := seen[result.JobID]; dup {
			t.Fatalf("duplicate job id %q", result.JobID)
		}
		seen[result.JobID] = struct{}{}
	}
}
