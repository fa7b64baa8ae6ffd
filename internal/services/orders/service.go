package orders

import (
	"log"
	"strconv"
	"time"

	"github.com/giofarma/storefront/internal/database"
	"github.com/giofarma/storefront/internal/errs"
	"github.com/giofarma/storefront/internal/models"
	"github.com/giofarma/storefront/internal/services/odoo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway is the slice of the Odoo client the order workflow needs.
type Gateway interface {
	CreateSaleOrder(input odoo.SaleOrderInput) (*odoo.SaleOrderResult, error)
}

// CartItem is one line of a submitted cart. Price is the unit price at
// add-time; the workflow recomputes subtotals from it but does not
// cross-check it against current catalog prices.
type CartItem struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// SubmitInput is the validated order submission payload
type SubmitInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	Notes           string
	Items           []CartItem
}

// SubmitResult combines the local and ERP identifiers of a created order
type SubmitResult struct {
	OrderID       string
	OdooOrderID   int64
	OdooOrderName string
	PartnerID     int64
	Total         decimal.Decimal
}

// Service runs the order submission workflow and order history lookups. It
// is the only writer of order rows.
type Service struct {
	gateway Gateway
	db      *database.DB
}

// NewService creates an order service
func NewService(gateway Gateway, db *database.DB) *Service {
	return &Service{gateway: gateway, db: db}
}

// Submit creates the sale order in Odoo first (the ERP is the source of
// truth for order existence), then persists the customer, order and lines
// in one local transaction. An ERP failure aborts before any local write.
func (s *Service) Submit(input SubmitInput) (*SubmitResult, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, &errs.StoreError{Msg: "database not configured"}
	}

	total := decimal.Zero
	lines := make([]odoo.SaleOrderLine, 0, len(input.Items))
	for _, item := range input.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		lines = append(lines, odoo.SaleOrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			PriceUnit: item.Price.InexactFloat64(),
		})
	}

	erpResult, err := s.gateway.CreateSaleOrder(odoo.SaleOrderInput{
		PartnerName:    input.CustomerName,
		PartnerEmail:   input.CustomerEmail,
		PartnerPhone:   input.CustomerPhone,
		PartnerAddress: input.CustomerAddress,
		Notes:          input.Notes,
		Lines:          lines,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var order models.Order

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		customer := models.Customer{
			OdooID:  erpResult.PartnerID,
			Name:    input.CustomerName,
			Email:   input.CustomerEmail,
			Phone:   input.CustomerPhone,
			Address: input.CustomerAddress,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"odoo_id", "name", "phone", "address"}),
		}).Create(&customer).Error; err != nil {
			return err
		}
		// On conflict the in-memory struct keeps its freshly generated id;
		// re-read so the order references the existing row.
		if err := tx.Where("email = ?", input.CustomerEmail).First(&customer).Error; err != nil {
			return err
		}

		order = models.Order{
			CustomerID:    customer.ID,
			OdooID:        strconv.FormatInt(erpResult.OrderID, 10),
			CustomerName:  input.CustomerName,
			CustomerEmail: input.CustomerEmail,
			TotalAmount:   total,
			Status:        models.OrderStatusConfirmed,
			SyncedToOdoo:  true,
			SyncedAt:      &now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		orderLines := make([]models.OrderLine, 0, len(input.Items))
		for _, item := range input.Items {
			orderLines = append(orderLines, models.OrderLine{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				PriceUnit: item.Price,
				Subtotal:  item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			})
		}
		return tx.Create(&orderLines).Error
	})
	if txErr != nil {
		// The ERP order now exists without a local record. Log the ids
		// needed for reconciliation and surface the gap distinctly from an
		// ERP-side failure.
		log.Printf("🚨 Order divergence: Odoo order %d (partner %d) created but local write failed: %v",
			erpResult.OrderID, erpResult.PartnerID, txErr)
		return nil, &errs.StoreError{
			Msg: "local order write failed after Odoo order " + strconv.FormatInt(erpResult.OrderID, 10) +
				" (partner " + strconv.FormatInt(erpResult.PartnerID, 10) + ") was created",
			Err: txErr,
		}
	}

	return &SubmitResult{
		OrderID:       order.ID,
		OdooOrderID:   erpResult.OrderID,
		OdooOrderName: erpResult.OrderName,
		PartnerID:     erpResult.PartnerID,
		Total:         total,
	}, nil
}

// validate rejects malformed submissions before any side effect
func validate(input SubmitInput) error {
	if len(input.Items) == 0 {
		return &errs.ValidationError{Msg: "cart is empty"}
	}
	if input.CustomerEmail == "" {
		return &errs.ValidationError{Msg: "customer email is required"}
	}
	if input.CustomerName == "" {
		return &errs.ValidationError{Msg: "customer name is required"}
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return &errs.ValidationError{Msg: "item quantity must be positive"}
		}
		if item.ProductID == 0 {
			return &errs.ValidationError{Msg: "item product_id is required"}
		}
	}
	return nil
}

// ListByEmail returns all orders for an exact email match, newest first,
// with their lines. An email with zero orders yields an empty list.
func (s *Service) ListByEmail(email string) ([]models.Order, error) {
	if email == "" {
		return nil, &errs.ValidationError{Msg: "email is required"}
	}
	if s.db == nil {
		return nil, &errs.StoreError{Msg: "database not configured"}
	}

	orders := make([]models.Order, 0)
	err := s.db.Preload("Lines").
		Where("customer_email = ?", email).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, &errs.StoreError{Msg: "failed to list orders", Err: err}
	}
	return orders, nil
}
