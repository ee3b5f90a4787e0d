// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olegiv/heavyfix/internal/util"
)

// LocalStorage writes files under a directory served at URLPrefix.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

// NewLocal creates the directory if needed.
func NewLocal(dir, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the root directory.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Put implements Storage.
func (s *LocalStorage) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	path, err := util.SafeJoinPath(s.dir, filepath.FromSlash(key))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing file: %w", err)
	}
	return s.urlPrefix + "/" + key, nil
}

// Delete implements Storage. Missing files are not an error.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	path, err := util.SafeJoinPath(s.dir, filepath.FromSlash(key))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
