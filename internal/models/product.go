package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product mirrors the sellable subset of Odoo 'product.product'. Rows are
// created and updated only by the catalog sync, keyed on the Odoo id.
type Product struct {
	OdooID           int64   `gorm:"column:odoo_id;primaryKey;autoIncrement:false" json:"odoo_id"`
	Name             string  `gorm:"not null;index" json:"name"`
	SKU              *string `gorm:"column:sku;index" json:"sku"`
	ListPrice        float64 `gorm:"column:list_price" json:"list_price"`
	QtyAvailable     float64 `gorm:"column:qty_available" json:"qty_available"`
	VirtualAvailable float64 `gorm:"column:virtual_available" json:"virtual_available"`
	Description      *string `gorm:"type:text" json:"description"`
	CategoryID       *int64  `gorm:"column:category_id;index" json:"category_id"`
	CategoryName     *string `json:"category_name"`
	UomName          *string `gorm:"column:uom_name" json:"uom_name"`
	ImageURL         string  `gorm:"column:image_url" json:"image_url"`
	Active           bool    `gorm:"index" json:"active"`

	// WriteDate is the last-write timestamp from Odoo, used for ordering
	// under the sync batch cap, never for conflict resolution.
	WriteDate    time.Time      `gorm:"column:write_date" json:"write_date"`
	LastSyncedAt time.Time      `json:"last_synced_at"`
	RawData      datatypes.JSON `gorm:"type:jsonb" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Product) TableName() string { return "products" }
