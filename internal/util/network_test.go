// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"192.168.0.10", true},
		{"169.254.169.254", true},
		{"100.64.0.1", true},
		{"224.0.0.1", true},
		{"::1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"1.1.1.1", false},
		{"8.8.8.8", false},
		{"172.15.255.255", false},
		{"2606:4700:4700::1111", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := IsPrivateIP(net.ParseIP(tt.ip)); got != tt.private {
				t.Errorf("IsPrivateIP(%s) = %v, want %v", tt.ip, got, tt.private)
			}
		})
	}
}

func TestIsPrivateIP_Nil(t *testing.T) {
	if !IsPrivateIP(nil) {
		t.Error("nil IP should be treated as private")
	}
}

func TestSSRFSafeDialContext(t *testing.T) {
	dialFn := SSRFSafeDialContext(&net.Dialer{})

	for _, addr := range []string{"127.0.0.1:80", "10.0.0.1:80", "[::1]:80"} {
		t.Run(addr, func(t *testing.T) {
			_, err := dialFn(t.Context(), "tcp", addr)
			if err == nil || !strings.Contains(err.Error(), "private IP") {
				t.Errorf("dial %s: got %v, want private IP error", addr, err)
			}
		})
	}

	t.Run("bad address", func(t *testing.T) {
		if _, err := dialFn(t.Context(), "tcp", "no-port"); err == nil {
			t.Error("expected error for address without port")
		}
	})
}

func TestNewSafeHTTPClient_BlocksLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewSafeHTTPClient(2 * time.Second)
	resp, err := client.Get(srv.URL)
	if err == nil {
		_ = resp.Body.Close()
		t.Fatal("expected loopback request to be blocked")
	}
}
