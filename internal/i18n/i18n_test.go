// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/heavyfix/internal/result"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init())
}

func TestEveryResultCodeIsTranslated(t *testing.T) {
	codes := []result.Code{
		result.CodeSuccess, result.CodeValidation, result.CodeAuth, result.CodeDB,
		result.CodeEmailExists, result.CodeServer, result.CodeForbidden,
	}
	for _, lang := range SupportedLanguages {
		for _, c := range codes {
			assert.True(t, Has(lang, c.MessageKey()), "%s missing %s", lang, c.MessageKey())
		}
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	c := get()
	require.NotNil(t, c)
	for key := range c.translations["ko"] {
		assert.True(t, Has("en", key), "en missing %s", key)
	}
	for key := range c.translations["en"] {
		assert.True(t, Has("ko", key), "ko missing %s", key)
	}
}

func TestT(t *testing.T) {
	assert.Equal(t, "권한이 없습니다.", T("ko", "result.forbidden"))
	assert.Equal(t, "You do not have permission.", T("en", "result.forbidden"))
	assert.Equal(t, "권한이 없습니다.", T("fr", "result.forbidden"))
	assert.Equal(t, "missing.key", T("en", "missing.key"))
	assert.Equal(t, "Welcome, Kim.", T("en", "auth.welcome", "Kim"))
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "ko"},
		{"en-US,en;q=0.9", "en"},
		{"ko-KR,ko;q=0.9,en;q=0.8", "ko"},
		{"fr-FR", "ko"},
		{"!!invalid!!", "ko"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLanguage(tt.header))
		})
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("KO"))
	assert.True(t, IsSupported("en"))
	assert.False(t, IsSupported("ru"))
}
