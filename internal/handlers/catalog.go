package handlers

import (
	"net/http"
	"strconv"

	"github.com/giofarma/storefront/internal/services/catalog"
)

// listProducts serves GET /api/products?page&limit&category&search
func (r *Router) listProducts(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	page := parseIntParam(query.Get("page"), 1)
	limit := parseIntParam(query.Get("limit"), catalog.DefaultPageSize)

	var categoryID int64
	if raw := query.Get("category"); raw != "" && raw != "null" {
		categoryID, _ = strconv.ParseInt(raw, 10, 64)
	}

	products, pagination, err := r.catalog.ListProducts(page, limit, categoryID, query.Get("search"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       products,
		"pagination": pagination,
	})
}

// listCategories serves GET /api/categories
func (r *Router) listCategories(w http.ResponseWriter, req *http.Request) {
	categories, err := r.catalog.ListCategories()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    categories,
	})
}

// runSync serves GET /api/sync (behind the bearer gate)
func (r *Router) runSync(w http.ResponseWriter, req *http.Request) {
	processed, duration, err := r.sync.RunFullSync()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"processed": processed,
		"duration":  strconv.Itoa(int(duration.Seconds())) + "s",
	})
}

// parseIntParam parses a positive integer query parameter with a default
func parseIntParam(raw string, defaultValue int) int {
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultValue
	}
	return n
}
