package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/giofarma/storefront/internal/services/orders"
	"github.com/shopspring/decimal"
)

// createOrderRequest is the POST /api/orders payload. Shapes that do not
// decode are rejected before any business logic runs.
type createOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	Notes           string `json:"notes"`
	Items           []struct {
		ProductID int64           `json:"product_id"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		Quantity  int             `json:"quantity"`
	} `json:"items"`
}

// createOrder serves POST /api/orders
func (r *Router) createOrder(w http.ResponseWriter, req *http.Request) {
	var body createOrderRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := orders.SubmitInput{
		CustomerName:    body.CustomerName,
		CustomerEmail:   body.CustomerEmail,
		CustomerPhone:   body.CustomerPhone,
		CustomerAddress: body.CustomerAddress,
		Notes:           body.Notes,
	}
	for _, item := range body.Items {
		input.Items = append(input.Items, orders.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	result, err := r.orders.Submit(input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"order_uuid":      result.OrderID,
			"odoo_order_id":   result.OdooOrderID,
			"odoo_order_name": result.OdooOrderName,
			"total_amount":    result.Total,
		},
	})
}

// listOrders serves GET /api/orders?email=
func (r *Router) listOrders(w http.ResponseWriter, req *http.Request) {
	orderList, err := r.orders.ListByEmail(req.URL.Query().Get("email"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    orderList,
	})
}
