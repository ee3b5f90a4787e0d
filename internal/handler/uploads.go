// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/imaging"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/storage"
	"github.com/olegiv/heavyfix/internal/util"
)

// UploadHandler stores images embedded in post bodies.
type UploadHandler struct {
	storage storage.Storage
	events  *service.EventService
	now     func() time.Time
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store storage.Storage, events *service.EventService) *UploadHandler {
	return &UploadHandler{storage: store, events: events, now: time.Now}
}

// Upload handles POST /admin/uploads. The multipart "file" field is
// normalized (EXIF orientation, metadata stripped, width capped) and the
// stored URL comes back as data.url.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	if err := p.Require(authz.ManagePosts); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, r, result.Validation(map[string]string{"file": "An image file is required"}))
		return
	}
	defer func() { _ = file.Close() }()

	img, err := imaging.Normalize(file)
	if err != nil {
		fields := map[string]string{"file": "Image could not be read"}
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			fields["file"] = "Only JPEG, PNG, GIF and WebP images are accepted"
		}
		middleware.WriteError(w, r, &result.Error{Code: result.CodeValidation, Fields: fields, Err: err})
		return
	}

	key := storage.PostImageKey(h.now().UTC(), img.Ext())
	url, err := h.storage.Put(r.Context(), key, img.MimeType, bytes.NewReader(img.Data))
	if err != nil {
		middleware.WriteError(w, r, result.Wrap(result.CodeServer, err))
		return
	}

	filename, _ := util.SanitizeFilename(header.Filename)
	h.events.LogInfo(r.Context(), model.EventCategoryPost, "Image uploaded", p.UserID, map[string]any{
		"key":      key,
		"filename": filename,
		"bytes":    len(img.Data),
	})
	middleware.WriteResult(w, http.StatusOK, result.OK(i18n.T(middleware.GetLang(r), "upload.saved")).
		WithData(map[string]string{"url": url}))
}
