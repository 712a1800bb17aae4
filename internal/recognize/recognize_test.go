package recognize

import (
	"context"
	"testing"
)

func TestDryRun(t *testing.T) {
	engine := DryRun{}

	fragments, err := engine.Recognize(context.Background(), []byte("not an image"))
	if err != nil {
		t.Fatalf("dry run must not fail: %v", err)
	}
	if len(fragments) != 1 || fragments[0] != DryRunSentinel {
		t.Errorf("expected sentinel fragment, got %v", fragments)
	}
	if engine.Name() != "dry-run" {
		t.Errorf("unexpected name: %s", engine.Name())
	}
}

func TestNewEngine(t *testing.T) {
	t.Run("dry-run", func(t *testing.T) {
		engine, err := NewEngine(Config{Engine: "dry-run"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := engine.(DryRun); !ok {
			t.Errorf("expected DryRun, got %T", engine)
		}
	})

	t.Run("openai requires api key", func(t *testing.T) {
		if _, err := NewEngine(Config{Engine: "openai"}); err == nil {
			t.Error("expected error without API key")
		}
	})

	t.Run("unknown engine", func(t *testing.T) {
		if _, err := NewEngine(Config{Engine: "bogus"}); err == nil {
			t.Error("expected error for unknown engine")
		}
	})
}

func TestMock(t *testing.T) {
	m := &Mock{RecognizeFunc: func(ctx context.Context, image []byte) ([]string, error) {
		return []string{"line"}, nil
	}}

	fragments, err := m.Recognize(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(fragments) != 1 || fragments[0] != "line" {
		t.Errorf("unexpected fragments: %v", fragments)
	}
	if m.Calls != 1 {
		t.Errorf("expected 1 call, got %d", m.Calls)
	}
}
