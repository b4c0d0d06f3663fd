// Package intake classifies uploaded documents before pipeline processing.
package intake

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// Raster decoders for the image integrity check.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/leaseguard/leaseguard/internal/domain"
)

// imageExtensions is the set of supported raster image file extensions.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
	".gif":  true,
}

// Classify inspects one uploaded item and produces a SourceDocument tagged
// image or pdf. A missing filename or an unsupported extension is a validation
// error; image bytes that do not decode are a transform error naming the file.
// Any error aborts the whole request upstream, there is no partial intake.
func Classify(filename string, data []byte) (domain.SourceDocument, error) {
	if strings.TrimSpace(filename) == "" {
		return domain.SourceDocument{}, domain.ValidationError("uploaded file has no filename", nil)
	}

	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case ext == ".pdf":
		return domain.SourceDocument{
			Filename: filename,
			Kind:     domain.KindPDF,
			Data:     data,
		}, nil

	case imageExtensions[ext]:
		if err := checkImage(data); err != nil {
			return domain.SourceDocument{}, domain.TransformError(
				fmt.Sprintf("invalid image file: %s", filename), err)
		}
		return domain.SourceDocument{
			Filename: filename,
			Kind:     domain.KindImage,
			Data:     data,
		}, nil

	default:
		return domain.SourceDocument{}, domain.ValidationError(
			fmt.Sprintf("unsupported file type: %s (only PDF and image files are accepted)", filename), nil)
	}
}

// checkImage verifies the bytes decode as a valid raster image.
func checkImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty file")
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return err
	}
	return nil
}
