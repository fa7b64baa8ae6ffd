package catalog

import (
	"math"
	"strings"

	"github.com/giofarma/storefront/internal/database"
	"github.com/giofarma/storefront/internal/errs"
	"github.com/giofarma/storefront/internal/models"
)

// DefaultPageSize matches the storefront grid
const DefaultPageSize = 12

// Pagination describes one page of a product listing
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Query serves read-only catalog lookups
type Query struct {
	db *database.DB
}

// NewQuery creates a catalog query layer
func NewQuery(db *database.DB) *Query {
	return &Query{db: db}
}

// ListProducts returns one page of active products, optionally filtered by
// exact category and case-insensitive name substring. Pages are 1-based;
// a page past the end returns an empty slice, not an error.
func (q *Query) ListProducts(page, limit int, categoryID int64, search string) ([]models.Product, *Pagination, error) {
	if q.db == nil {
		return nil, nil, &errs.StoreError{Msg: "database not configured"}
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	tx := q.db.Model(&models.Product{}).Where("active = ?", true)
	if categoryID != 0 {
		tx = tx.Where("category_id = ?", categoryID)
	}
	if search = strings.TrimSpace(search); search != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, nil, &errs.StoreError{Msg: "failed to count products", Err: err}
	}

	products := make([]models.Product, 0, limit)
	offset := (page - 1) * limit
	if err := tx.Order("name asc").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, nil, &errs.StoreError{Msg: "failed to list products", Err: err}
	}

	return products, &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// ListCategories returns all active categories ordered by name
func (q *Query) ListCategories() ([]models.Category, error) {
	if q.db == nil {
		return nil, &errs.StoreError{Msg: "database not configured"}
	}

	categories := make([]models.Category, 0)
	if err := q.db.Where("active = ?", true).Order("name asc").Find(&categories).Error; err != nil {
		return nil, &errs.StoreError{Msg: "failed to list categories", Err: err}
	}
	return categories, nil
}
