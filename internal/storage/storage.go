// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage stores uploaded post images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Storage stores objects under slash-separated keys.
type Storage interface {
	// Put writes r under key and returns the public URL of the object.
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// PostImageKey returns posts/YYYY/MM/<uuid><ext>.
func PostImageKey(now time.Time, ext string) string {
	return fmt.Sprintf("posts/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
}
