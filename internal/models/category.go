package models

import "time"

// Category mirrors Odoo 'product.category'. Rows are written only by the
// catalog sync; absent categories are never pruned, so a product may keep
// referencing a category that disappeared from a later sync run.
type Category struct {
	OdooID     int64   `gorm:"column:odoo_id;primaryKey;autoIncrement:false" json:"odoo_id"`
	Name       string  `gorm:"not null;index" json:"name"`
	ParentID   *int64  `gorm:"column:parent_id" json:"parent_id"`
	ParentName *string `json:"parent_name"`
	Active     bool    `gorm:"index" json:"active"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Category) TableName() string { return "categories" }
