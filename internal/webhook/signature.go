// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook authenticates inbound webhook requests signed with a
// shared secret.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SignatureHeader carries "sha256=<hex hmac of the raw body>".
const SignatureHeader = "X-Webhook-Signature"

// signaturePrefix names the HMAC algorithm in the header value.
const signaturePrefix = "sha256="

// MaxBodyBytes bounds inbound payloads.
const MaxBodyBytes = 64 << 10

// Errors returned by ReadBody.
var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrBodyTooLarge     = errors.New("webhook body too large")
)

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// HeaderValue formats the signature header for payload.
func HeaderValue(payload []byte, secret string) string {
	return signaturePrefix + GenerateSignature(payload, secret)
}

// VerifySignature verifies an HMAC-SHA256 signature in constant time.
// The "sha256=" prefix is optional.
func VerifySignature(payload []byte, signature, secret string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), signaturePrefix)
	expectedSig := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expectedSig))
}

// ReadBody reads at most MaxBodyBytes of r's body. With a non-empty secret
// the body must match SignatureHeader; an empty secret accepts any body.
func ReadBody(r *http.Request, secret string) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading webhook body: %w", err)
	}
	if len(body) > MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	if secret == "" {
		return body, nil
	}
	sig := r.Header.Get(SignatureHeader)
	if sig == "" {
		return nil, ErrMissingSignature
	}
	if !VerifySignature(body, sig, secret) {
		return nil, ErrInvalidSignature
	}
	return body, nil
}
