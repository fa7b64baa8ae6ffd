package odoo

import "github.com/giofarma/storefront/internal/errs"

// saleOrderOrigin tags orders created by the storefront so they are
// recognizable inside Odoo.
const saleOrderOrigin = "Catálogo Web GioFarma"

// SaleOrderLine is one cart line bound for Odoo.
type SaleOrderLine struct {
	ProductID int64
	Name      string
	Quantity  int
	PriceUnit float64
}

// SaleOrderInput carries everything needed to create a sale order and, if
// necessary, the partner behind it.
type SaleOrderInput struct {
	PartnerName    string
	PartnerEmail   string
	PartnerPhone   string
	PartnerAddress string
	Notes          string
	Lines          []SaleOrderLine
}

// SaleOrderResult is returned on success.
type SaleOrderResult struct {
	OrderID   int64
	OrderName string
	PartnerID int64
}

// CreateSaleOrder resolves the partner by exact email match (creating one
// when absent), then creates a sale order with the cart lines. Every step
// propagates failure; there is no retry and no rollback, so a partner
// created before a failing order create is left behind. Known limitation.
func (c *Client) CreateSaleOrder(input SaleOrderInput) (*SaleOrderResult, error) {
	partnerDomain := []interface{}{
		[]interface{}{"email", "=", input.PartnerEmail},
	}
	raw, err := c.Execute("res.partner", "search", []interface{}{partnerDomain}, nil)
	if err != nil {
		return nil, err
	}

	var partnerID int64
	if ids := toInt64Slice(raw); len(ids) > 0 {
		partnerID = ids[0]
	} else {
		created, err := c.Execute("res.partner", "create", []interface{}{
			map[string]interface{}{
				"name":          input.PartnerName,
				"email":         input.PartnerEmail,
				"phone":         input.PartnerPhone,
				"street":        input.PartnerAddress,
				"customer_rank": 1,
			},
		}, nil)
		if err != nil {
			return nil, err
		}
		id, ok := toInt64(created)
		if !ok || id == 0 {
			return nil, &errs.RemoteCallError{Model: "res.partner", Method: "create", Err: errInvalidID}
		}
		partnerID = id
	}

	// Odoo expects order lines as (0, 0, values) create-triplets.
	orderLines := make([]interface{}, 0, len(input.Lines))
	for _, line := range input.Lines {
		orderLines = append(orderLines, []interface{}{0, 0, map[string]interface{}{
			"product_id":      line.ProductID,
			"product_uom_qty": line.Quantity,
			"price_unit":      line.PriceUnit,
			"name":            line.Name,
		}})
	}

	createdOrder, err := c.Execute("sale.order", "create", []interface{}{
		map[string]interface{}{
			"partner_id": partnerID,
			"order_line": orderLines,
			"origin":     saleOrderOrigin,
			"note":       input.Notes,
		},
	}, nil)
	if err != nil {
		return nil, err
	}
	orderID, ok := toInt64(createdOrder)
	if !ok || orderID == 0 {
		return nil, &errs.RemoteCallError{Model: "sale.order", Method: "create", Err: errInvalidID}
	}

	// Read back the human-readable order reference (e.g. "S00042").
	var orderInfo []struct {
		Name string `json:"name"`
	}
	rawInfo, err := c.Execute("sale.order", "read",
		[]interface{}{[]interface{}{orderID}},
		map[string]interface{}{"fields": []string{"name"}})
	if err != nil {
		return nil, err
	}
	if err := decodeRecords(rawInfo, &orderInfo); err != nil {
		return nil, &errs.RemoteCallError{Model: "sale.order", Method: "read", Err: err}
	}

	result := &SaleOrderResult{
		OrderID:   orderID,
		PartnerID: partnerID,
	}
	if len(orderInfo) > 0 {
		result.OrderName = orderInfo[0].Name
	}
	return result, nil
}
