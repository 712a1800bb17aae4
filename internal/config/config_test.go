package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Manifest.Corpus != "corpus.manifest.txt" {
		t.Errorf("unexpected corpus manifest name: %s", cfg.Manifest.Corpus)
	}
	if cfg.Manifest.Processed != "processed.manifest.txt" {
		t.Errorf("unexpected processed manifest name: %s", cfg.Manifest.Processed)
	}
	if cfg.Run.CheckpointEvery != 1 {
		t.Errorf("expected checkpoint_every default of 1, got %d", cfg.Run.CheckpointEvery)
	}
	if cfg.Run.Workers <= 0 {
		t.Errorf("expected positive default worker count, got %d", cfg.Run.Workers)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("expands references", func(t *testing.T) {
		t.Setenv("BROADSHEET_TEST_VALUE", "secret123")
		got := ResolveEnvVars("${BROADSHEET_TEST_VALUE}")
		if got != "secret123" {
			t.Errorf("expected secret123, got %s", got)
		}
	})

	t.Run("missing variable becomes empty", func(t *testing.T) {
		got := ResolveEnvVars("${BROADSHEET_DOES_NOT_EXIST_XYZ}")
		if got != "" {
			t.Errorf("expected empty string, got %s", got)
		}
	})

	t.Run("plain string passes through", func(t *testing.T) {
		if got := ResolveEnvVars("plain"); got != "plain" {
			t.Errorf("expected plain, got %s", got)
		}
	})
}

func TestResolved(t *testing.T) {
	t.Setenv("TEST_SAS_URL", "https://example.blob.core.windows.net/?sig=abc")

	cfg := &Config{
		Storage: StorageCfg{AccountURL: "${TEST_SAS_URL}", Container: "corpus"},
	}
	resolved := cfg.Resolved()

	if resolved.Storage.AccountURL != "https://example.blob.core.windows.net/?sig=abc" {
		t.Errorf("account URL not resolved: %s", resolved.Storage.AccountURL)
	}
	// Original untouched.
	if cfg.Storage.AccountURL != "${TEST_SAS_URL}" {
		t.Errorf("original config mutated: %s", cfg.Storage.AccountURL)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("written config is empty")
	}
}
