// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Errorf("unexpected hash prefix: %s", hash)
	}

	other, _ := HashPassword("correct horse")
	if hash == other {
		t.Error("hashes of the same password should differ by salt")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, err := CheckPassword("correct horse", hash)
	if err != nil || !ok {
		t.Errorf("CheckPassword(correct) = %v, %v; want true", ok, err)
	}

	ok, err = CheckPassword("wrong horse", hash)
	if err != nil || ok {
		t.Errorf("CheckPassword(wrong) = %v, %v; want false", ok, err)
	}
}

func TestCheckPassword_NoPassword(t *testing.T) {
	ok, err := CheckPassword("anything", "")
	if ok || !errors.Is(err, ErrNoPassword) {
		t.Errorf("CheckPassword on empty hash = %v, %v; want false, ErrNoPassword", ok, err)
	}
}

func TestCheckPassword_Malformed(t *testing.T) {
	for _, h := range []string{
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!$aGFzaA",
	} {
		if _, err := CheckPassword("pw", h); err == nil {
			t.Errorf("CheckPassword(%q) should fail", h)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, _ := HashPassword("pw-12345678")
	if NeedsRehash(hash) {
		t.Error("fresh hash should not need rehash")
	}
	weaker := strings.Replace(hash, "m=19456,t=2", "m=4096,t=1", 1)
	if !NeedsRehash(weaker) {
		t.Error("hash with old parameters should need rehash")
	}
	if !NeedsRehash("garbage") {
		t.Error("unparseable hash should need rehash")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw   string
		want bool
	}{
		{"short", false},
		{"12345678", true},
		{"비밀번호비밀번호", true},
		{strings.Repeat("a", 129), false},
	}
	for _, tt := range tests {
		got := ValidatePassword(tt.pw) == ""
		if got != tt.want {
			t.Errorf("ValidatePassword(%q) ok = %v, want %v", tt.pw, got, tt.want)
		}
	}
}
