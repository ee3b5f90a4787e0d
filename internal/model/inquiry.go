// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Customer inquiry types accepted by the inbound webhook.
const (
	InquiryTypeParts     = "부품문의"
	InquiryTypeDispatch  = "출장문의"
	InquiryTypeTechnical = "기술문의"
)

// InquiryTypes lists the accepted customer inquiry types.
var InquiryTypes = []string{InquiryTypeParts, InquiryTypeDispatch, InquiryTypeTechnical}

// ValidInquiryType reports whether t is an accepted inquiry type.
func ValidInquiryType(t string) bool {
	for _, v := range InquiryTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Customer inquiry statuses. A row moves from pending to notified once a
// notification attempt has gone through; it never moves back.
const (
	InquiryStatusPending  = "pending"
	InquiryStatusNotified = "notified"
)
