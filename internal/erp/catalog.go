// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package erp

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Product is one catalog entry with its stock thresholds.
type Product struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Unit     string          `json:"unit"`
	MinQty   decimal.Decimal `json:"min_qty"`
	SafeQty  decimal.Decimal `json:"safe_qty"`
}

// Catalog is the ordered product list shown on the inventory page.
type Catalog []Product

type catalogFile struct {
	Products []struct {
		Code     string `yaml:"code"`
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
		Unit     string `yaml:"unit"`
		MinQty   string `yaml:"min_qty"`
		SafeQty  string `yaml:"safe_qty"`
	} `yaml:"products"`
}

// LoadCatalog reads path, or the embedded catalog when path is empty.
func LoadCatalog(path string) (Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes YAML. Codes must be unique and thresholds must be
// non-negative numbers; a missing threshold means zero.
func ParseCatalog(data []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Products))
	out := make(Catalog, 0, len(f.Products))
	for i, p := range f.Products {
		if p.Code == "" {
			return nil, fmt.Errorf("catalog entry %d: code is required", i)
		}
		if seen[p.Code] {
			return nil, fmt.Errorf("catalog entry %d: duplicate code %q", i, p.Code)
		}
		seen[p.Code] = true

		minQty, err := parseThreshold(p.MinQty)
		if err != nil {
			return nil, fmt.Errorf("catalog %s min_qty: %w", p.Code, err)
		}
		safeQty, err := parseThreshold(p.SafeQty)
		if err != nil {
			return nil, fmt.Errorf("catalog %s safe_qty: %w", p.Code, err)
		}

		name := p.Name
		if name == "" {
			name = p.Code
		}
		out = append(out, Product{
			Code:     p.Code,
			Name:     name,
			Category: p.Category,
			Unit:     p.Unit,
			MinQty:   minQty,
			SafeQty:  safeQty,
		})
	}
	return out, nil
}

func parseThreshold(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return d, nil
}
