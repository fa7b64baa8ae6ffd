package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus defines possible order statuses. The submission workflow only
// ever sets 'confirmed'; other values exist for Odoo-driven updates handled
// outside this service.
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Order is the local record of a confirmed cart submission. OdooID is the
// sale.order id stored as text so a missing or oddly formatted ERP id never
// breaks the row.
type Order struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID string `gorm:"type:uuid;index" json:"customer_id"`
	OdooID     string `gorm:"column:odoo_id" json:"odoo_id"`

	// Denormalized so order history stays readable without a join.
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `gorm:"index" json:"customer_email"`

	// Invariant: TotalAmount == sum of line subtotals.
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_amount"`
	Status      OrderStatus     `gorm:"default:confirmed;index" json:"status"`

	SyncedToOdoo bool       `gorm:"column:synced_to_odoo" json:"synced_to_odoo"`
	SyncedAt     *time.Time `json:"synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"order_lines"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderLine freezes the product name and unit price at order time; a later
// product rename or price change must not alter history. Subtotal is
// persisted for query convenience, never recomputed on read.
type OrderLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   string          `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID int64           `gorm:"column:product_id" json:"product_id"`
	Name      string          `gorm:"column:product_name" json:"product_name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	PriceUnit decimal.Decimal `gorm:"type:numeric(12,2)" json:"price_unit"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2)" json:"subtotal"`

	CreatedAt time.Time `json:"-"`
}

func (OrderLine) TableName() string { return "order_lines" }
