package handlers

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/snapreward/apiserver/internal/storage"
	"go.uber.org/zap"
)

// UploadsHandler streams stored submission images back to clients.
type UploadsHandler struct {
	storage *storage.Storage
	logger  *zap.Logger
}

func NewUploadsHandler(store *storage.Storage, logger *zap.Logger) *UploadsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadsHandler{storage: store, logger: logger}
}

// UploadsRouter registers the public upload-serving route.
func UploadsRouter(r chi.Router, store *storage.Storage, logger *zap.Logger) {
	handler := NewUploadsHandler(store, logger)

	r.Get("/{key}", handler.ServeUpload)
}

func (h *UploadsHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	reader, err := h.storage.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch file")
		return
	}
	defer reader.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream upload", zap.String("key", key), zap.Error(err))
	}
}
