//go:build !cgo

package recognize

import (
	"context"
	"fmt"
)

const TesseractName = "tesseract"

// TesseractConfig configures the Tesseract engine.
type TesseractConfig struct {
	Language string // defaults to "eng"
}

// Tesseract is unavailable without cgo: the gosseract bindings require a
// C toolchain and the Tesseract library at build time.
type Tesseract struct{}

// NewTesseract reports that the Tesseract engine is unavailable in a
// cgo-disabled build.
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	return nil, fmt.Errorf("tesseract engine requires a cgo-enabled build")
}

// Name returns the engine identifier.
func (t *Tesseract) Name() string { return TesseractName }

// Recognize reports that the Tesseract engine is unavailable in a
// cgo-disabled build.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) ([]string, error) {
	return nil, fmt.Errorf("tesseract engine requires a cgo-enabled build")
}

// Close is a no-op in a cgo-disabled build.
func (t *Tesseract) Close() error { return nil }
