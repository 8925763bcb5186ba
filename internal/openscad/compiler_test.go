package openscad

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
)

// fakeBinary writes an executable shell script standing in for openscad. The
// real binary is invoked as: openscad -o <out> <source>.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openscad")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

func TestCompileSuccess(t *testing.T) {
	// Argument order is: -o <out> <source>, so $2 is the artifact path.
	bin := fakeBinary(t, `echo "solid model" > "$2"`+"\n"+`echo "Geometries in cache: 1"`)
	dir := t.TempDir()
	src := filepath.Join(dir, "job.scad")
	out := filepath.Join(dir, "job.stl")
	if err := os.WriteFile(src, []byte("cube(1);"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	c := New(bin, time.Minute)
	result, err := c.Compile(context.Background(), src, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Stdout, "Geometries in cache") {
		t.Fatalf("stdout not captured: %q", result.Stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil || len(data) == 0 {
		t.Fatalf("artifact not written: %v", err)
	}
}

func TestCompileNonZeroExit(t *testing.T) {
	bin := fakeBinary(t, `echo "ERROR: Parser error: syntax error" >&2`+"\nexit 1")
	dir := t.TempDir()
	src := filepath.Join(dir, "job.scad")
	if err := os.WriteFile(src, []byte("cube(1"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	c := New(bin, time.Minute)
	result, err := c.Compile(context.Background(), src, filepath.Join(dir, "job.stl"))
	if !errors.Is(err, domain.ErrCompilationFailed) {
		t.Fatalf("expected ErrCompilationFailed, got %v", err)
	}
	if errors.Is(err, domain.ErrCompileTimeout) {
		t.Fatal("non-zero exit must not be reported as timeout")
	}
	if !strings.Contains(result.Stderr, "Parser error") {
		t.Fatalf("stderr not captured: %q", result.Stderr)
	}
}

func TestCompileTimeoutKillsProcess(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "still-running")
	bin := fakeBinary(t, "sleep 5\ntouch "+marker)
	dir := t.TempDir()
	src := filepath.Join(dir, "job.scad")
	if err := os.WriteFile(src, []byte("cube(1);"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	c := New(bin, 50*time.Millisecond)
	start := time.Now()
	_, err := c.Compile(context.Background(), src, filepath.Join(dir, "job.stl"))
	if !errors.Is(err, domain.ErrCompileTimeout) {
		t.Fatalf("expected ErrCompileTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("compile blocked for %s after timeout", elapsed)
	}
	// Give a straggler a moment, then confirm the process never resumed.
	time.Sleep(200 * time.Millisecond)
	if _, statErr := os.Stat(marker); statErr == nil {
		t.Fatal("child process survived the timeout")
	}
}

func TestVersionProbe(t *testing.T) {
	bin := fakeBinary(t, `echo "OpenSCAD version 2021.01"`)
	c := New(bin, time.Minute)
	version, err := c.Version(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != "OpenSCAD version 2021.01" {
		t.Fatalf("version = %q", version)
	}
}

func TestVersionProbeMissingBinary(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing"), time.Minute)
	if _, err := c.Version(context.Background()); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
