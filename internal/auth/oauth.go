// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/olegiv/heavyfix/internal/model"
)

// StateTTL bounds how long a user may take on the provider's consent page.
const StateTTL = 10 * time.Minute

// Errors returned by the OAuth flow.
var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrInvalidState    = errors.New("invalid oauth state")
	ErrNoEmail         = errors.New("oauth provider did not return an email")
)

// Identity is the account information returned by a provider.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// Provider is an OAuth2 identity provider.
type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	// parse converts the userinfo response body into an Identity.
	parse func([]byte) (Identity, error)
}

// GoogleProvider returns the Google OpenID Connect provider.
func GoogleProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: model.ProviderGoogle,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		parse:       parseGoogleUser,
	}
}

// KakaoProvider returns the Kakao Login provider.
func KakaoProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: model.ProviderKakao,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://kauth.kakao.com/oauth/authorize",
				TokenURL:  "https://kauth.kakao.com/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"account_email", "profile_nickname"},
		},
		UserInfoURL: "https://kapi.kakao.com/v2/user/me",
		parse:       parseKakaoUser,
	}
}

func parseGoogleUser(body []byte) (Identity, error) {
	var u struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return Identity{}, fmt.Errorf("decoding google userinfo: %w", err)
	}
	if u.Email == "" || !u.EmailVerified {
		return Identity{}, ErrNoEmail
	}
	return Identity{Provider: model.ProviderGoogle, Subject: u.Sub, Email: u.Email, Name: u.Name}, nil
}

func parseKakaoUser(body []byte) (Identity, error) {
	var u struct {
		ID      int64 `json:"id"`
		Account struct {
			Email           string `json:"email"`
			IsEmailValid    bool   `json:"is_email_valid"`
			IsEmailVerified bool   `json:"is_email_verified"`
			Profile         struct {
				Nickname string `json:"nickname"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return Identity{}, fmt.Errorf("decoding kakao user: %w", err)
	}
	if u.Account.Email == "" || !u.Account.IsEmailValid || !u.Account.IsEmailVerified {
		return Identity{}, ErrNoEmail
	}
	return Identity{
		Provider: model.ProviderKakao,
		Subject:  strconv.FormatInt(u.ID, 10),
		Email:    u.Account.Email,
		Name:     u.Account.Profile.Nickname,
	}, nil
}

// OAuth runs the authorization-code flow for a set of providers. The state
// parameter is an HS256 token binding the provider and a per-session nonce.
type OAuth struct {
	providers  map[string]*Provider
	stateKey   []byte
	httpClient *http.Client
	now        func() time.Time
}

// NewOAuth creates an OAuth flow signing state with stateKey.
func NewOAuth(stateKey []byte, providers ...*Provider) *OAuth {
	o := &OAuth{
		providers:  make(map[string]*Provider, len(providers)),
		stateKey:   stateKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
	for _, p := range providers {
		o.providers[p.Name] = p
	}
	return o
}

// Enabled returns the configured provider names in sorted order.
func (o *OAuth) Enabled() []string {
	names := make([]string, 0, len(o.providers))
	for name := range o.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type stateClaims struct {
	Provider string `json:"prv"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// NewNonce returns a random URL-safe nonce to be stored in the session.
func NewNonce() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthCodeURL returns the provider consent URL carrying a signed state.
func (o *OAuth) AuthCodeURL(provider, nonce string) (string, error) {
	p, ok := o.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}

	now := o.now()
	claims := stateClaims{
		Provider: provider,
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
		},
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(o.stateKey)
	if err != nil {
		return "", fmt.Errorf("signing state: %w", err)
	}
	return p.Config.AuthCodeURL(state), nil
}

// VerifyState checks the state signature, expiry, provider and nonce.
func (o *OAuth) VerifyState(state, provider, nonce string) error {
	if nonce == "" {
		return ErrInvalidState
	}
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(*jwt.Token) (any, error) {
		return o.stateKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(o.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if claims.Provider != provider || claims.Nonce != nonce {
		return ErrInvalidState
	}
	return nil
}

// Exchange trades an authorization code for the provider's identity.
func (o *OAuth) Exchange(ctx context.Context, provider, code string) (Identity, error) {
	p, ok := o.providers[provider]
	if !ok {
		return Identity{}, ErrUnknownProvider
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchanging code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("creating userinfo request: %w", err)
	}
	resp, err := p.Config.Client(ctx, token).Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Identity{}, fmt.Errorf("reading userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	ident, err := p.parse(body)
	if err != nil {
		return Identity{}, err
	}
	if ident.Subject == "" {
		return Identity{}, fmt.Errorf("userinfo missing subject")
	}
	ident.Email = strings.ToLower(strings.TrimSpace(ident.Email))
	if ident.Name == "" {
		ident.Name, _, _ = strings.Cut(ident.Email, "@")
	}
	return ident, nil
}
