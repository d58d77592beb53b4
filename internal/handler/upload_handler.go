package handler

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const maxUploadSize = 10 << 20 // 10 MiB

// ObjectStorage stores an uploaded file and returns its public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
}

type UploadHandler struct {
	storage ObjectStorage
	logger  *zap.Logger
}

func NewUploadHandler(storage ObjectStorage, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{storage: storage, logger: logger.Named("UploadHandler")}
}

// Upload accepts a multipart form with an "image" field and stores it in
// object storage.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	url, err := h.storage.Upload(r.Context(), header.Filename, data)
	if err != nil {
		h.logger.Error("Upload to object storage failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
