// Package imageprep normalizes uploaded images before they are handed to a
// classification model: orientation is fixed from EXIF, large images are
// scaled down and everything is re-encoded as JPEG.
package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// MIMEType is the content type of every prepared image.
const MIMEType = "image/jpeg"

// DefaultMaxDimension bounds the longest side when none is configured.
const DefaultMaxDimension = 512

// ErrDecode is returned when the file is not a readable image.
var ErrDecode = errors.New("uploaded file is not a supported image")

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// HasImageExtension reports whether filename ends in png, jpg or jpeg.
func HasImageExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Prepare loads the image at path and returns it as JPEG bytes whose longest
// side is at most maxDim pixels. Smaller images are not enlarged.
func Prepare(path string, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img := imaging.Fit(src, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}
