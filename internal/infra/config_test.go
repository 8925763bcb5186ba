package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_MODELS", "")
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("COMPILE_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GeminiConfigured() {
		t.Fatal("GeminiConfigured must be false without a key")
	}
	want := []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}
	if len(cfg.GeminiModels) != len(want) {
		t.Fatalf("GeminiModels = %v", cfg.GeminiModels)
	}
	for i := range want {
		if cfg.GeminiModels[i] != want[i] {
			t.Fatalf("GeminiModels = %v, want %v", cfg.GeminiModels, want)
		}
	}
	if cfg.StoragePath != "./models" {
		t.Fatalf("StoragePath = %q", cfg.StoragePath)
	}
	if cfg.CompileTimeout != 120*time.Second {
		t.Fatalf("CompileTimeout = %s", cfg.CompileTimeout)
	}
}

func TestLoadConfigModelOrderPreserved(t *testing.T) {
	t.Setenv("GEMINI_MODELS", " primary , secondary ,, tertiary ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"primary", "secondary", "tertiary"}
	if len(cfg.GeminiModels) != len(want) {
		t.Fatalf("GeminiModels = %v", cfg.GeminiModels)
	}
	for i := range want {
		if cfg.GeminiModels[i] != want[i] {
			t.Fatalf("GeminiModels = %v, want %v", cfg.GeminiModels, want)
		}
	}
}

func TestLoadConfigTrimsAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "  key-123  ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GeminiAPIKey != "key-123" {
		t.Fatalf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if !cfg.GeminiConfigured() {
		t.Fatal("GeminiConfigured must be true with a key")
	}
}
