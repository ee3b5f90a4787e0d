// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package erp

import "github.com/shopspring/decimal"

// Status is the stock level of one product.
type Status string

const (
	StatusSafe Status = "safe"
	StatusLow  Status = "low"
	StatusOut  Status = "out"
)

// ParseStatus returns the status named s.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusSafe, StatusLow, StatusOut:
		return Status(s), true
	default:
		return "", false
	}
}

// InventoryItem is a catalog product with its current quantity.
type InventoryItem struct {
	Product
	Quantity decimal.Decimal `json:"quantity"`
	Status   Status          `json:"status"`
}

// Summary counts items per status.
type Summary struct {
	Total int `json:"total"`
	Safe  int `json:"safe"`
	Low   int `json:"low"`
	Out   int `json:"out"`
}

// Classify is out when qty <= 0, low when below a positive safe or minimum
// threshold, and safe otherwise.
func Classify(qty, minQty, safeQty decimal.Decimal) Status {
	switch {
	case !qty.IsPositive():
		return StatusOut
	case safeQty.IsPositive() && qty.LessThan(safeQty):
		return StatusLow
	case minQty.IsPositive() && qty.LessThan(minQty):
		return StatusLow
	default:
		return StatusSafe
	}
}

// Merge joins balances onto the catalog in one pass. Rows for the same code
// are summed, codes absent from the catalog are ignored and catalog
// products without a balance get zero. Catalog order is kept.
func Merge(catalog Catalog, balances []Balance) []InventoryItem {
	totals := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		totals[b.ProdCode] = totals[b.ProdCode].Add(b.Qty)
	}

	items := make([]InventoryItem, 0, len(catalog))
	for _, p := range catalog {
		qty := totals[p.Code]
		items = append(items, InventoryItem{
			Product:  p,
			Quantity: qty,
			Status:   Classify(qty, p.MinQty, p.SafeQty),
		})
	}
	return items
}

// Summarize counts items per status.
func Summarize(items []InventoryItem) Summary {
	s := Summary{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case StatusSafe:
			s.Safe++
		case StatusLow:
			s.Low++
		case StatusOut:
			s.Out++
		}
	}
	return s
}

// Filter returns the items with the given status. An empty status returns
// all items.
func Filter(items []InventoryItem, status Status) []InventoryItem {
	if status == "" {
		return items
	}
	out := make([]InventoryItem, 0, len(items))
	for _, it := range items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	return out
}
