// Package raster loads page raster images and crops region images for
// the recognition engine. Kept deliberately narrow: the pipeline only
// needs the page pixel height (for the layout scale factor) and PNG
// bytes of a region crop.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	_ "image/jpeg" // register decoders for the raster formats in the corpus
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/press-dig/broadsheet/internal/alto"
)

// MasterDirName is the directory holding page rasters within an issue.
const MasterDirName = "MASTER"

// Page is one decoded page raster.
type Page struct {
	Path string
	img  image.Image
}

// rasterExtensions lists the formats tried, in order.
var rasterExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}

// LoadPage finds and decodes the raster for a page number. The modern
// corpus keeps rasters under the issue's MASTER directory with two
// historical zero-padding widths; the legacy tabular-primitive corpus
// keeps a per-page Img directory whose _252 variant is full resolution,
// matching the unscaled geometry of its layout documents.
func LoadPage(issueDir string, pageNumber int) (*Page, error) {
	var candidates []string
	for _, pattern := range []string{"%04d", "%05d"} {
		base := fmt.Sprintf(pattern, pageNumber)
		for _, ext := range rasterExtensions {
			candidates = append(candidates, filepath.Join(issueDir, MasterDirName, base+ext))
		}
	}
	candidates = append(candidates,
		filepath.Join(issueDir, strconv.Itoa(pageNumber), "Img", fmt.Sprintf("Pg%03d_252.png", pageNumber)))

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return decodePage(path)
	}
	return nil, fmt.Errorf("no page raster found for page %d (tried %d names under %s)",
		pageNumber, len(candidates), issueDir)
}

func decodePage(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page raster: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page raster %s: %w", path, err)
	}
	return &Page{Path: path, img: img}, nil
}

// Height returns the raster pixel height.
func (p *Page) Height() int {
	return p.img.Bounds().Dy()
}

// CropRegion returns PNG bytes of the region's image. The rect is in
// layout units; scale converts it to raster pixels.
func (p *Page) CropRegion(rect alto.Rect, scale float64) ([]byte, error) {
	scaled := rect.Scaled(scale)
	bounds := image.Rect(int(scaled.X0), int(scaled.Y0), int(scaled.X1), int(scaled.Y1))
	bounds = bounds.Intersect(p.img.Bounds())
	if bounds.Empty() {
		return nil, fmt.Errorf("region crop %v lies outside the page raster", bounds)
	}

	crop := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(crop, image.Point{}, p.img, bounds, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return nil, fmt.Errorf("failed to encode region crop: %w", err)
	}
	return buf.Bytes(), nil
}
