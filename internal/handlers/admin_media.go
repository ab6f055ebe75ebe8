package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"devflink/internal/errs"
	"devflink/internal/middleware"
	"devflink/internal/respond"
	"devflink/internal/storage"
)

// imageExtensions maps accepted image types, as sniffed from the file
// content, to the extension used in the object key.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadMedia stores an image in the public bucket and returns its URL for
// use as a post image.
func (a *Admin) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		storageUnavailable(w)
		return
	}

	data, ok := readUpload(w, r, "file")
	if !ok {
		return
	}

	mimeType := http.DetectContentType(data)
	ext, allowed := imageExtensions[mimeType]
	if !allowed {
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"error":  "File type not allowed. Use JPEG, PNG, GIF or WebP.",
			"fields": []string{"file"},
		})
		return
	}

	key := storage.ObjectKey(storage.MediaPrefix, ext, time.Now())
	url, err := a.storage.UploadPublic(r.Context(), key, mimeType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("media uploaded",
		"key", key,
		"type", mimeType,
		"size", len(data),
		"user_id", middleware.PrincipalFromCtx(r.Context()).ID,
	)
	respond.JSON(w, http.StatusCreated, map[string]string{"url": url, "key": key})
}

// DeleteMedia removes a previously uploaded image given its public URL.
func (a *Admin) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		storageUnavailable(w)
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	key, ok := a.storage.ExtractKey(req.URL)
	if !ok {
		respond.Error(w, r, errs.Invalid("url", "url does not point into the media bucket"))
		return
	}
	if err := a.storage.DeletePublic(r.Context(), key); err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("media deleted", "key", key)
	deleted(w, "Media")
}
