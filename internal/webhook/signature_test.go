// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateSignature(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		secret  string
	}{
		{"empty payload", []byte{}, "secret"},
		{"simple payload", []byte(`{"type":"부품문의"}`), "mysecret"},
		{"empty secret", []byte(`test`), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSignature(tt.payload, tt.secret)
			// SHA256 = 32 bytes = 64 hex chars
			if len(result) != 64 {
				t.Errorf("GenerateSignature() returned signature with length %d, expected 64", len(result))
			}
			if result2 := GenerateSignature(tt.payload, tt.secret); result != result2 {
				t.Errorf("GenerateSignature() not consistent: %s != %s", result, result2)
			}
		})
	}
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"type":"출장문의","name":"김철수","contact":"010-1234-5678"}`)
	secret := "hook-secret"

	if !VerifySignature(payload, GenerateSignature(payload, secret), secret) {
		t.Error("VerifySignature() should accept a bare hex signature")
	}
	if !VerifySignature(payload, HeaderValue(payload, secret), secret) {
		t.Error("VerifySignature() should accept a sha256= prefixed signature")
	}
	if !VerifySignature(payload, strings.ToUpper(GenerateSignature(payload, secret)), secret) {
		t.Error("VerifySignature() should accept upper-case hex")
	}
	if VerifySignature(payload, HeaderValue(payload, secret), "wrong-secret") {
		t.Error("VerifySignature() should return false with wrong secret")
	}
}

func TestVerifySignature_InvalidSignature(t *testing.T) {
	payload := []byte(`{"test":"data"}`)
	secret := "mysecret"

	tests := []struct {
		name      string
		signature string
	}{
		{"empty signature", ""},
		{"invalid hex", "not-a-valid-hex-string"},
		{"wrong length", "sha256=abc123"},
		{"tampered signature", "sha256=0000000000000000000000000000000000000000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(payload, tt.signature, secret) {
				t.Error("VerifySignature() should return false for invalid signature")
			}
		})
	}
}

func TestReadBody(t *testing.T) {
	body := `{"type":"기술문의"}`
	secret := "s3cret"

	tests := []struct {
		name    string
		secret  string
		header  string
		body    string
		wantErr error
	}{
		{"no secret configured", "", "", body, nil},
		{"valid signature", secret, HeaderValue([]byte(body), secret), body, nil},
		{"missing signature", secret, "", body, ErrMissingSignature},
		{"wrong signature", secret, HeaderValue([]byte(body), "other"), body, ErrInvalidSignature},
		{"oversized body", "", "", strings.Repeat("x", MaxBodyBytes+1), ErrBodyTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/webhooks/inquiry", strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set(SignatureHeader, tt.header)
			}
			got, err := ReadBody(req, tt.secret)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadBody() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && string(got) != tt.body {
				t.Errorf("ReadBody() = %q, want %q", got, tt.body)
			}
		})
	}
}
