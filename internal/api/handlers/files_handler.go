package handlers

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"complyhr/internal/platform/storage"
)

// FilesHandler streams stored documents to holders of a valid signed URL.
type FilesHandler struct {
	bucket *storage.Bucket
}

func NewFilesHandler(bucket *storage.Bucket) *FilesHandler {
	return &FilesHandler{bucket: bucket}
}

func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	p := strings.TrimPrefix(param(r, "path"), "/")
	q := r.URL.Query()
	if err := h.bucket.Verify(p, q.Get("expires"), q.Get("signature"), time.Now()); err != nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Invalid or expired link"})
		return
	}

	f, err := h.bucket.Open(p)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Error().Err(err).Str("path", p).Msg("failed to stat stored file")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeContent(w, r, path.Base(p), info.ModTime(), f)
}
