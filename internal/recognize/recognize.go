// Package recognize wraps the external text-recognition engines behind a
// narrow interface. The pipeline treats an engine as a conditionally
// failing collaborator: a failed region gets empty text, never aborts a
// worker.
package recognize

import (
	"context"
	"fmt"
)

// DryRunSentinel is recorded instead of real text when recognition is
// skipped in dry-run mode.
const DryRunSentinel = "dry_run"

// Engine converts one raster region image into text fragments. Fragments
// are joined with a line separator by callers.
type Engine interface {
	// Name returns the engine identifier (e.g. "tesseract", "openai").
	Name() string

	// Recognize extracts text fragments from a region image.
	Recognize(ctx context.Context, image []byte) ([]string, error)
}

// Config selects and configures an engine.
type Config struct {
	Engine   string // "tesseract", "openai", "dry-run"
	Language string // tesseract language code
	Model    string // openai vision model
	APIKey   string
}

// NewEngine constructs the configured engine.
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.Engine {
	case "tesseract", "":
		return NewTesseract(TesseractConfig{Language: cfg.Language})
	case "openai":
		return NewOpenAI(OpenAIConfig{Model: cfg.Model, APIKey: cfg.APIKey})
	case "dry-run":
		return DryRun{}, nil
	default:
		return nil, fmt.Errorf("unknown recognition engine %q", cfg.Engine)
	}
}

// DryRun records a sentinel result without invoking any engine.
type DryRun struct{}

// Name returns the engine identifier.
func (DryRun) Name() string { return "dry-run" }

// Recognize returns the dry-run sentinel.
func (DryRun) Recognize(ctx context.Context, image []byte) ([]string, error) {
	return []string{DryRunSentinel}, nil
}
