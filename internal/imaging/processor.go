// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded repair-case photos and resizes
// proxied feed images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MIME types accepted for upload.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
	MimeWebP = "image/webp"
)

// Limits.
const (
	MaxUploadBytes = 10 << 20
	MaxWidth       = 1920
	MaxResizeWidth = 1200
	JPEGQuality    = 85
)

// ErrUnsupportedFormat is returned for anything but JPEG, PNG, GIF and WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Image is an encoded, orientation-corrected image.
type Image struct {
	Data     []byte
	Width    int
	Height   int
	MimeType string
}

// Ext returns the file extension matching MimeType.
func (i *Image) Ext() string {
	switch i.MimeType {
	case MimePNG:
		return ".png"
	case MimeGIF:
		return ".gif"
	default:
		return ".jpg"
	}
}

// Normalize decodes an upload, applies EXIF orientation, strips metadata by
// re-encoding and scales it down to MaxWidth.
func Normalize(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxUploadBytes)
	}
	return transform(data, MaxWidth, true)
}

// Resize scales data down to width, preserving aspect ratio. Width is
// clamped to MaxResizeWidth; images already narrower are re-encoded as is.
func Resize(data []byte, width int) (*Image, error) {
	if width <= 0 || width > MaxResizeWidth {
		width = MaxResizeWidth
	}
	return transform(data, width, false)
}

func transform(data []byte, maxWidth int, orient bool) (*Image, error) {
	format := DetectMimeType(data)
	if !IsSupported(format) {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if orient {
		img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	// There is no pure-Go WebP encoder, so WebP becomes JPEG.
	out := format
	if out == MimeWebP {
		out = MimeJPEG
	}
	encoded, err := encode(img, out)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	b := img.Bounds()
	return &Image{Data: encoded, Width: b.Dx(), Height: b.Dy(), MimeType: out}, nil
}

// DetectMimeType sniffs data. TIFF is never reported as supported because of
// CVE-2023-36308 in the TIFF decoder.
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// IsSupported reports whether mimeType can be processed.
func IsSupported(mimeType string) bool {
	switch mimeType {
	case MimeJPEG, MimePNG, MimeGIF, MimeWebP:
		return true
	default:
		return false
	}
}

func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation maps EXIF orientations 2-8 onto flips and rotations.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encode(img image.Image, mimeType string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch mimeType {
	case MimePNG:
		err = png.Encode(&buf, img)
	case MimeGIF:
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
