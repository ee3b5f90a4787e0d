// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imageproxy re-serves third-party images from an allow-list of
// hosts so pages never hot-link them directly.
package imageproxy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/heavyfix/internal/imaging"
	"github.com/olegiv/heavyfix/internal/metrics"
	"github.com/olegiv/heavyfix/internal/util"
)

// Path is the route the proxy is mounted on.
const Path = "/api/image-proxy"

// CacheControl is sent with every proxied image.
const CacheControl = "public, max-age=31536000, immutable"

// MaxBodyBytes caps the upstream body.
const MaxBodyBytes = 10 << 20

// Width bounds for the optional w parameter.
const (
	MinWidth = 16
	MaxWidth = imaging.MaxResizeWidth
)

// Errors returned by Check.
var (
	ErrBadURL      = errors.New("missing or malformed url")
	ErrHostDenied  = errors.New("host is not allowed")
	ErrBadUpstream = errors.New("upstream did not return an image")
)

// Proxy serves allow-listed images.
type Proxy struct {
	hosts   map[string]struct{}
	client  *http.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a proxy for hosts. A nil client uses an SSRF-safe client
// with a 15s timeout.
func New(hosts []string, client *http.Client, m *metrics.Metrics, logger *slog.Logger) *Proxy {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			set[h] = struct{}{}
		}
	}
	if client == nil {
		client = util.NewSafeHTTPClient(15 * time.Second)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxy{hosts: set, client: client, metrics: m, logger: logger}
}

// Check parses raw and verifies its scheme and host. The host is compared
// case-folded with any port removed.
func (p *Proxy) Check(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrBadURL
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return nil, ErrBadURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrHostDenied
	}
	if _, ok := p.hosts[strings.ToLower(u.Hostname())]; !ok {
		return nil, ErrHostDenied
	}
	return u, nil
}

// URLFor returns the proxied URL for raw when its host is allowed and raw
// unchanged otherwise.
func (p *Proxy) URLFor(raw string) string {
	if _, err := p.Check(raw); err != nil {
		return raw
	}
	return Path + "?url=" + url.QueryEscape(raw)
}

// ServeHTTP handles GET /api/image-proxy?url=&w=.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target, err := p.Check(r.URL.Query().Get("url"))
	switch {
	case errors.Is(err, ErrHostDenied):
		p.metrics.ImageProxy(metrics.OutcomeForbidden)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	case err != nil:
		p.metrics.ImageProxy(metrics.OutcomeBadInput)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	width := 0
	if ws := r.URL.Query().Get("w"); ws != "" {
		width, err = strconv.Atoi(ws)
		if err != nil || width < MinWidth || width > MaxWidth {
			p.metrics.ImageProxy(metrics.OutcomeBadInput)
			http.Error(w, fmt.Sprintf("w must be between %d and %d", MinWidth, MaxWidth), http.StatusBadRequest)
			return
		}
	}

	contentType, body, err := p.fetch(r, target)
	if err != nil {
		p.logger.Warn("image proxy fetch failed", "url", target.String(), "error", err)
		p.metrics.ImageProxy(metrics.OutcomeUpstream)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	if width > 0 {
		if img, rerr := imaging.Resize(body, width); rerr == nil {
			contentType, body = img.MimeType, img.Data
		} else {
			p.logger.Debug("image proxy resize skipped", "url", target.String(), "error", rerr)
		}
	}

	p.metrics.ImageProxy(metrics.OutcomeServed)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", CacheControl)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, bytes.NewReader(body))
}

func (p *Proxy) fetch(r *http.Request, target *url.URL) (string, []byte, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("%w: HTTP %d", ErrBadUpstream, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", nil, fmt.Errorf("%w: content type %q", ErrBadUpstream, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return "", nil, err
	}
	if len(body) > MaxBodyBytes {
		return "", nil, fmt.Errorf("%w: body exceeds %d bytes", ErrBadUpstream, MaxBodyBytes)
	}
	return contentType, body, nil
}
