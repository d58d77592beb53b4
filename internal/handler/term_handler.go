package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/usecase"
)

type termRequest struct {
	Name string `json:"name"`
}

// TermHandler serves one taxonomy kind; the router mounts one instance
// per kind.
type TermHandler struct {
	taxonomy *usecase.TaxonomyUsecase
	logger   *zap.Logger
}

func NewTermHandler(taxonomy *usecase.TaxonomyUsecase, logger *zap.Logger) *TermHandler {
	return &TermHandler{
		taxonomy: taxonomy,
		logger:   logger.Named("TermHandler").With(zap.String("kind", taxonomy.Kind())),
	}
}

func (h *TermHandler) List(w http.ResponseWriter, r *http.Request) {
	terms, err := h.taxonomy.List(r.Context())
	if err != nil {
		h.logger.Error("Taxonomy listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list entries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{h.taxonomy.Kind(): terms})
}

func (h *TermHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req termRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	term, err := h.taxonomy.Create(r.Context(), req.Name)
	if err != nil {
		h.writeTermError(w, err, "Failed to create entry")
		return
	}
	writeJSON(w, http.StatusCreated, term)
}

func (h *TermHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req termRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	term, err := h.taxonomy.Update(r.Context(), id, req.Name)
	if err != nil {
		h.writeTermError(w, err, "Failed to update entry")
		return
	}
	writeJSON(w, http.StatusOK, term)
}

func (h *TermHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.taxonomy.Delete(r.Context(), id); err != nil {
		h.writeTermError(w, err, "Failed to delete entry")
		return
	}
	writeMessage(w, http.StatusOK, "Entry deleted")
}

func (h *TermHandler) writeTermError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrTermNotFound):
		writeError(w, http.StatusNotFound, "Entry not found")
	case errors.Is(err, usecase.ErrInvalidTerm):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrDuplicateTerm):
		writeError(w, http.StatusConflict, "An entry with this name already exists")
	default:
		h.logger.Error(fallback, zap.Error(err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
