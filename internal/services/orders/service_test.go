package orders

import (
	"fmt"
	"testing"
	"time"

	"github.com/giofarma/storefront/internal/database"
	"github.com/giofarma/storefront/internal/errs"
	"github.com/giofarma/storefront/internal/models"
	"github.com/giofarma/storefront/internal/services/odoo"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	lastInput *odoo.SaleOrderInput
	result    *odoo.SaleOrderResult
	err       error
	calls     int
}

func (f *fakeGateway) CreateSaleOrder(input odoo.SaleOrderInput) (*odoo.SaleOrderResult, error) {
	f.calls++
	f.lastInput = &input
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.Customer{},
		&models.Order{},
		&models.OrderLine{},
	))
	return database.Wrap(gdb)
}

func sampleInput() SubmitInput {
	return SubmitInput{
		CustomerName:    "María Pérez",
		CustomerEmail:   "maria@example.com",
		CustomerPhone:   "+34 600 000 000",
		CustomerAddress: "Calle Mayor 1, Madrid",
		Notes:           "entregar por la tarde",
		Items: []CartItem{
			{ProductID: 101, Name: "Paracetamol 500mg", Price: decimal.RequireFromString("10.50"), Quantity: 2},
			{ProductID: 102, Name: "Ibuprofeno 400mg", Price: decimal.RequireFromString("5.00"), Quantity: 3},
		},
	}
}

func successGateway() *fakeGateway {
	return &fakeGateway{result: &odoo.SaleOrderResult{OrderID: 42, OrderName: "S00042", PartnerID: 7}}
}

func TestSubmit_TotalsInvariant(t *testing.T) {
	db := newTestDB(t)
	gateway := successGateway()
	svc := NewService(gateway, db)

	result, err := svc.Submit(sampleInput())
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(decimal.RequireFromString("36.00")), "got %s", result.Total)
	assert.Equal(t, int64(42), result.OdooOrderID)
	assert.Equal(t, "S00042", result.OdooOrderName)
	assert.NotEmpty(t, result.OrderID)

	var order models.Order
	require.NoError(t, db.Preload("Lines").First(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, "42", order.OdooID)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.True(t, order.SyncedToOdoo)
	require.NotNil(t, order.SyncedAt)
	require.Len(t, order.Lines, 2)

	// total_amount == sum(line.subtotal); subtotal == price * quantity
	sum := decimal.Zero
	for _, line := range order.Lines {
		expected := line.PriceUnit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		assert.True(t, line.Subtotal.Equal(expected))
		sum = sum.Add(line.Subtotal)
	}
	assert.True(t, order.TotalAmount.Equal(sum))
}

func TestSubmit_EmptyCart(t *testing.T) {
	db := newTestDB(t)
	gateway := successGateway()
	svc := NewService(gateway, db)

	input := sampleInput()
	input.Items = nil

	_, err := svc.Submit(input)
	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, gateway.calls)

	// No rows of any kind were written
	var customers, orders, lines int64
	db.Model(&models.Customer{}).Count(&customers)
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.OrderLine{}).Count(&lines)
	assert.Zero(t, customers)
	assert.Zero(t, orders)
	assert.Zero(t, lines)
}

func TestSubmit_NonPositiveQuantity(t *testing.T) {
	svc := NewService(successGateway(), newTestDB(t))

	input := sampleInput()
	input.Items[0].Quantity = 0

	_, err := svc.Submit(input)
	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSubmit_ERPFailureAborts(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{err: &errs.RemoteCallError{Model: "sale.order", Method: "create", Err: assert.AnError}}
	svc := NewService(gateway, db)

	_, err := svc.Submit(sampleInput())
	var remoteErr *errs.RemoteCallError
	require.ErrorAs(t, err, &remoteErr)

	// ERP is the source of truth: no local order for an ERP-failed submission
	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
	var customers int64
	db.Model(&models.Customer{}).Count(&customers)
	assert.Zero(t, customers)
}

func TestSubmit_StoreFailureReportsERPIdentifiers(t *testing.T) {
	db := newTestDB(t)
	gateway := successGateway()
	svc := NewService(gateway, db)

	// Break the local store so the write fails after the ERP call succeeds.
	require.NoError(t, db.Migrator().DropTable(&models.Order{}))

	_, err := svc.Submit(sampleInput())
	var storeErr *errs.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, 1, gateway.calls)

	// The error must carry both ERP-side ids so the divergence can be
	// reconciled later.
	assert.Contains(t, storeErr.Msg, "Odoo order 42")
	assert.Contains(t, storeErr.Msg, "partner 7")
}

func TestSubmit_FreezesLineFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(successGateway(), db)

	result, err := svc.Submit(sampleInput())
	require.NoError(t, err)

	// Rename the product after the order; history must not change.
	var line models.OrderLine
	require.NoError(t, db.First(&line, "order_id = ? AND product_id = ?", result.OrderID, 101).Error)
	assert.Equal(t, "Paracetamol 500mg", line.Name)
	assert.True(t, line.PriceUnit.Equal(decimal.RequireFromString("10.50")))
}

func TestSubmit_CustomerUpsertByEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(successGateway(), db)

	_, err := svc.Submit(sampleInput())
	require.NoError(t, err)

	second := sampleInput()
	second.CustomerPhone = "+34 611 111 111"
	_, err = svc.Submit(second)
	require.NoError(t, err)

	// One row per distinct email regardless of how many orders
	var customers []models.Customer
	require.NoError(t, db.Find(&customers).Error)
	require.Len(t, customers, 1)
	assert.Equal(t, "+34 611 111 111", customers[0].Phone)
	assert.Equal(t, int64(7), customers[0].OdooID)

	// Both orders reference the same customer row
	var orders []models.Order
	require.NoError(t, db.Find(&orders).Error)
	require.Len(t, orders, 2)
	assert.Equal(t, orders[0].CustomerID, orders[1].CustomerID)
	assert.Equal(t, customers[0].ID, orders[0].CustomerID)
}

func TestSubmit_PassesPartnerDetailsToERP(t *testing.T) {
	gateway := successGateway()
	svc := NewService(gateway, newTestDB(t))

	_, err := svc.Submit(sampleInput())
	require.NoError(t, err)

	require.NotNil(t, gateway.lastInput)
	assert.Equal(t, "maria@example.com", gateway.lastInput.PartnerEmail)
	assert.Equal(t, "entregar por la tarde", gateway.lastInput.Notes)
	require.Len(t, gateway.lastInput.Lines, 2)
	assert.Equal(t, int64(101), gateway.lastInput.Lines[0].ProductID)
	assert.Equal(t, 2, gateway.lastInput.Lines[0].Quantity)
	assert.Equal(t, 10.50, gateway.lastInput.Lines[0].PriceUnit)
}

func TestListByEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(successGateway(), db)

	result, err := svc.Submit(sampleInput())
	require.NoError(t, err)

	// Backdate the first order so ordering is observable
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", result.OrderID).
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)

	second, err := svc.Submit(sampleInput())
	require.NoError(t, err)

	found, err := svc.ListByEmail("maria@example.com")
	require.NoError(t, err)
	require.Len(t, found, 2)
	// Newest first
	assert.Equal(t, second.OrderID, found[0].ID)
	assert.Equal(t, result.OrderID, found[1].ID)
	assert.Len(t, found[0].Lines, 2)
}

func TestListByEmail_NoOrders(t *testing.T) {
	svc := NewService(successGateway(), newTestDB(t))

	found, err := svc.ListByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestListByEmail_MissingEmail(t *testing.T) {
	svc := NewService(successGateway(), newTestDB(t))

	_, err := svc.ListByEmail("")
	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
