// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(width, height)); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{MimeJPEG, true},
		{MimePNG, true},
		{MimeGIF, true},
		{MimeWebP, true},
		{"image/tiff", false},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := IsSupported(tt.mimeType); got != tt.want {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestNormalize_KeepsSmallPNG(t *testing.T) {
	img, err := Normalize(bytes.NewReader(pngBytes(t, 40, 30)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if img.Width != 40 || img.Height != 30 {
		t.Errorf("size = %dx%d, want 40x30", img.Width, img.Height)
	}
	if img.MimeType != MimePNG || img.Ext() != ".png" {
		t.Errorf("MimeType = %q ext %q, want png", img.MimeType, img.Ext())
	}
}

func TestNormalize_RejectsText(t *testing.T) {
	if _, err := Normalize(strings.NewReader("not an image at all")); err != ErrUnsupportedFormat {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestResize_ScalesDown(t *testing.T) {
	img, err := Resize(pngBytes(t, 200, 100), 50)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if img.Width != 50 || img.Height != 25 {
		t.Errorf("size = %dx%d, want 50x25", img.Width, img.Height)
	}
}

func TestResize_DoesNotUpscale(t *testing.T) {
	img, err := Resize(pngBytes(t, 20, 10), 400)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if img.Width != 20 {
		t.Errorf("width = %d, want 20", img.Width)
	}
}

func TestApplyOrientation(t *testing.T) {
	src := createTestImage(4, 2)
	for _, o := range []int{5, 6, 7, 8} {
		got := applyOrientation(src, o)
		if got.Bounds().Dx() != 2 || got.Bounds().Dy() != 4 {
			t.Errorf("orientation %d: size = %v, want 2x4", o, got.Bounds())
		}
	}
	if got := applyOrientation(src, 1); got.Bounds().Dx() != 4 {
		t.Errorf("orientation 1 should not rotate")
	}
}
