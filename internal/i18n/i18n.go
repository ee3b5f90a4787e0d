// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n translates UI strings and result messages. Korean is the
// default language; English is the fallback for admins who prefer it.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localesFS embed.FS

// DefaultLanguage is used when nothing better matches.
const DefaultLanguage = "ko"

// SupportedLanguages lists the UI languages, default first.
var SupportedLanguages = []string{"ko", "en"}

type catalog struct {
	translations map[string]map[string]string
	matcher      language.Matcher
	supported    []language.Tag
}

var (
	loadOnce sync.Once
	loaded   *catalog
	loadErr  error
)

func get() *catalog {
	loadOnce.Do(func() {
		loaded, loadErr = load()
		if loadErr != nil {
			slog.Error("loading translations", "error", loadErr)
		}
	})
	return loaded
}

func load() (*catalog, error) {
	c := &catalog{translations: make(map[string]map[string]string)}
	for _, lang := range SupportedLanguages {
		data, err := localesFS.ReadFile("locales/" + lang + ".json")
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", lang, err)
		}
		m := make(map[string]string)
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", lang, err)
		}
		c.translations[lang] = m
		c.supported = append(c.supported, language.MustParse(lang))
	}
	c.matcher = language.NewMatcher(c.supported)
	return c, nil
}

// Init loads the embedded catalogs eagerly so startup fails on a bad file.
func Init() error {
	get()
	return loadErr
}

// T translates key into lang, falling back to the default language and
// then to the key itself. Args are applied with fmt.Sprintf.
func T(lang, key string, args ...any) string {
	c := get()
	if c == nil {
		return key
	}
	translation, ok := c.translations[lang][key]
	if !ok {
		translation, ok = c.translations[DefaultLanguage][key]
		if !ok {
			return key
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

// Has reports whether key exists in lang.
func Has(lang, key string) bool {
	c := get()
	if c == nil {
		return false
	}
	_, ok := c.translations[lang][key]
	return ok
}

// MatchLanguage picks the best supported language for an Accept-Language
// header or a bare language code.
func MatchLanguage(acceptLang string) string {
	c := get()
	if c == nil || acceptLang == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(c.supported) {
		return DefaultLanguage
	}
	return c.supported[idx].String()
}

// IsSupported checks if a language code is supported.
func IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, s := range SupportedLanguages {
		if s == lang {
			return true
		}
	}
	return false
}
