// Package pdfrender renders PDF documents to per-page raster images.
package pdfrender

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"

	"github.com/leaseguard/leaseguard/internal/domain"
)

// DefaultDPI is the render resolution used when none is configured.
const DefaultDPI = 200

// Rasterizer converts PDF bytes into ordered page rasters using go-fitz.
type Rasterizer struct {
	dpi int
}

// NewRasterizer creates a rasterizer rendering at the given DPI. A
// non-positive DPI falls back to DefaultDPI.
func NewRasterizer(dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{dpi: dpi}
}

// Rasterize decodes the PDF and renders every page to PNG in page order.
// A corrupt or unreadable document fails the whole call; pages are never
// silently skipped.
func (r *Rasterizer) Rasterize(ctx context.Context, documentIndex int, data []byte) ([]domain.Page, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, domain.TransformError("failed to open PDF", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.TransformError("PDF has no pages", nil)
	}

	pages := make([]domain.Page, 0, pageCount)

	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(pageNum, float64(r.dpi))
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("failed to render page %d", pageNum+1), err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, domain.TransformError(fmt.Sprintf("failed to encode page %d as PNG", pageNum+1), err)
		}

		pages = append(pages, domain.Page{
			DocumentIndex: documentIndex,
			PageIndex:     pageNum,
			PNG:           buf.Bytes(),
		})
	}

	return pages, nil
}
