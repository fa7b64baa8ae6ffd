package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is keyed by email: one row per distinct email regardless of how
// many orders. OdooID is the res.partner id resolved during order submission.
type Customer struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	OdooID  int64  `gorm:"column:odoo_id" json:"odoo_id"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"uniqueIndex;not null" json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
