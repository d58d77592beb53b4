package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/usecase"
)

type ProductHandler struct {
	catalog *usecase.CatalogUsecase
	logger  *zap.Logger
}

func NewProductHandler(catalog *usecase.CatalogUsecase, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger.Named("ProductHandler")}
}

// List serves the storefront catalog with filters, pagination and
// render-time pricing.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseProductFilter(r)
	views, err := h.catalog.SearchProducts(r.Context(), filter, time.Now())
	if err != nil {
		h.logger.Error("Product listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": views})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	view, err := h.catalog.GetProduct(r.Context(), id, time.Now())
	if err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Product fetch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Slug is required")
		return
	}

	view, err := h.catalog.GetProductBySlug(r.Context(), slug, time.Now())
	if err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Product fetch by slug failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var product entity.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	product.ID = primitive.NilObjectID

	created, err := h.catalog.CreateProduct(r.Context(), &product)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var product entity.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	product.ID = id

	updated, err := h.catalog.UpdateProduct(r.Context(), &product)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.writeCatalogError(w, err, "Failed to delete product")
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted")
}

func (h *ProductHandler) writeCatalogError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, usecase.ErrInvalidProduct):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrDuplicateSlug):
		writeError(w, http.StatusConflict, "A product with this slug already exists")
	default:
		h.logger.Error(fallback, zap.Error(err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func parseProductFilter(r *http.Request) entity.ProductFilter {
	q := r.URL.Query()
	filter := entity.ProductFilter{
		Query:       q.Get("q"),
		CategoryID:  q.Get("category"),
		TypeID:      q.Get("type"),
		TagID:       q.Get("tag"),
		FrameworkID: q.Get("framework"),
		SortBy:      q.Get("sort"),
		SortOrder:   q.Get("order"),
	}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		filter.MinPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		filter.MaxPrice = v
	}
	if v, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil {
		filter.Page = v
	}
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil {
		filter.Limit = v
	}
	return filter
}
