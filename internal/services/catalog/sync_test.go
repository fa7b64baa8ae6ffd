package catalog

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/giofarma/storefront/internal/database"
	"github.com/giofarma/storefront/internal/errs"
	"github.com/giofarma/storefront/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGateway replays canned Odoo records through the same JSON decode path
// the real client uses, so dynamic typing (false for empty fields, [id,
// label] pairs) is exercised end to end.
type fakeGateway struct {
	categories []map[string]interface{}
	products   []map[string]interface{}
	err        error
	calls      int32
}

func (f *fakeGateway) SearchRead(model string, domain []interface{}, fields []string, limit int, order string, result interface{}) error {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return f.err
	}
	var payload interface{}
	switch model {
	case "product.category":
		payload = f.categories
	case "product.product":
		payload = f.products
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.OrderLine{},
		&models.SyncLog{},
	))
	return database.Wrap(gdb)
}

func testCatalog() *fakeGateway {
	return &fakeGateway{
		categories: []map[string]interface{}{
			{"id": 1, "name": "Medicamentos", "parent_id": false},
			{"id": 2, "name": "Analgésicos", "parent_id": []interface{}{1, "Medicamentos"}},
		},
		products: []map[string]interface{}{
			{
				"id":                101,
				"name":              "Paracetamol 500mg",
				"default_code":      "PARA-500",
				"list_price":        4.50,
				"qty_available":     120.0,
				"virtual_available": 150.0,
				"description_sale":  "Caja de 20 comprimidos",
				"categ_id":          []interface{}{2, "Analgésicos"},
				"uom_id":            []interface{}{1, "Units"},
				"write_date":        "2024-05-01 10:00:00",
			},
			{
				"id":                102,
				"name":              "Ibuprofeno 400mg",
				"default_code":      false,
				"list_price":        0,
				"qty_available":     0,
				"virtual_available": 0,
				"description_sale":  false,
				"categ_id":          false,
				"uom_id":            false,
				"write_date":        false,
			},
		},
	}
}

func TestRunFullSync_MapsProducts(t *testing.T) {
	db := newTestDB(t)
	gateway := testCatalog()
	svc := NewSyncService(gateway, db, Config{OdooBaseURL: "https://erp.example.com"})

	processed, _, err := svc.RunFullSync()
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	var products []models.Product
	require.NoError(t, db.Order("odoo_id asc").Find(&products).Error)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, int64(101), first.OdooID)
	require.NotNil(t, first.SKU)
	assert.Equal(t, "PARA-500", *first.SKU)
	assert.Equal(t, 4.50, first.ListPrice)
	require.NotNil(t, first.CategoryID)
	assert.Equal(t, int64(2), *first.CategoryID)
	require.NotNil(t, first.CategoryName)
	assert.Equal(t, "Analgésicos", *first.CategoryName)
	require.NotNil(t, first.UomName)
	assert.Equal(t, "Units", *first.UomName)
	assert.Equal(t, "https://erp.example.com/web/image/product.product/101/image_512", first.ImageURL)
	assert.True(t, first.Active)

	// Odoo's false for empty fields maps to null/zero, never to "false"
	second := products[1]
	assert.Nil(t, second.SKU)
	assert.Nil(t, second.Description)
	assert.Nil(t, second.CategoryID)
	assert.Nil(t, second.CategoryName)
	assert.Nil(t, second.UomName)
	assert.Zero(t, second.ListPrice)

	var categories []models.Category
	require.NoError(t, db.Order("odoo_id asc").Find(&categories).Error)
	require.Len(t, categories, 2)
	assert.Nil(t, categories[0].ParentID)
	require.NotNil(t, categories[1].ParentID)
	assert.Equal(t, int64(1), *categories[1].ParentID)
	require.NotNil(t, categories[1].ParentName)
	assert.Equal(t, "Medicamentos", *categories[1].ParentName)
}

func TestRunFullSync_Idempotent(t *testing.T) {
	db := newTestDB(t)
	gateway := testCatalog()
	svc := NewSyncService(gateway, db, Config{OdooBaseURL: "https://erp.example.com"})

	_, _, err := svc.RunFullSync()
	require.NoError(t, err)
	_, _, err = svc.RunFullSync()
	require.NoError(t, err)

	var productCount, categoryCount int64
	db.Model(&models.Product{}).Count(&productCount)
	db.Model(&models.Category{}).Count(&categoryCount)
	assert.Equal(t, int64(2), productCount)
	assert.Equal(t, int64(2), categoryCount)

	var product models.Product
	require.NoError(t, db.First(&product, "odoo_id = ?", 101).Error)
	assert.Equal(t, "Paracetamol 500mg", product.Name)
	assert.Equal(t, 4.50, product.ListPrice)
}

func TestRunFullSync_RenamedProductUpdated(t *testing.T) {
	db := newTestDB(t)
	gateway := testCatalog()
	svc := NewSyncService(gateway, db, Config{OdooBaseURL: "https://erp.example.com"})

	_, _, err := svc.RunFullSync()
	require.NoError(t, err)

	gateway.products[0]["name"] = "Paracetamol 500mg (nuevo formato)"
	gateway.products[0]["list_price"] = 4.95
	_, _, err = svc.RunFullSync()
	require.NoError(t, err)

	var product models.Product
	require.NoError(t, db.First(&product, "odoo_id = ?", 101).Error)
	assert.Equal(t, "Paracetamol 500mg (nuevo formato)", product.Name)
	assert.Equal(t, 4.95, product.ListPrice)
}

func TestRunFullSync_EmptyProductsFailsRun(t *testing.T) {
	db := newTestDB(t)
	gateway := testCatalog()
	gateway.products = nil
	svc := NewSyncService(gateway, db, Config{OdooBaseURL: "https://erp.example.com"})

	_, _, err := svc.RunFullSync()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no products returned")

	var entry models.SyncLog
	require.NoError(t, db.Order("id desc").First(&entry).Error)
	assert.Equal(t, models.SyncStatusError, entry.Status)
	assert.NotEmpty(t, entry.ErrorMessage)
	assert.NotNil(t, entry.CompletedAt)
}

func TestRunFullSync_AuthFailureRecorded(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{err: &errs.AuthenticationError{}}
	svc := NewSyncService(gateway, db, Config{OdooBaseURL: "https://erp.example.com"})

	_, _, err := svc.RunFullSync()
	require.Error(t, err)

	var authErr *errs.AuthenticationError
	assert.ErrorAs(t, err, &authErr)

	var entry models.SyncLog
	require.NoError(t, db.Order("id desc").First(&entry).Error)
	assert.Equal(t, models.SyncStatusError, entry.Status)
	assert.NotEmpty(t, entry.ErrorMessage)
}

func TestRunFullSync_LogLifecycle(t *testing.T) {
	db := newTestDB(t)
	gateway := testCatalog()
	svc := NewSyncService(gateway, db, Config{OdooBaseURL: "https://erp.example.com"})

	processed, duration, err := svc.RunFullSync()
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.GreaterOrEqual(t, duration, time.Duration(0))

	var entries []models.SyncLog
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, models.SyncTypeFull, entry.SyncType)
	// Never left in 'processing' after the call returns
	assert.Equal(t, models.SyncStatusSuccess, entry.Status)
	assert.Equal(t, 2, entry.RecordsProcessed)
	require.NotNil(t, entry.CompletedAt)
	assert.False(t, entry.CompletedAt.Before(entry.StartedAt))
}

func TestStart_StopDuringInitialDelay(t *testing.T) {
	gateway := testCatalog()
	svc := NewSyncService(gateway, newTestDB(t), Config{
		OdooBaseURL:  "https://erp.example.com",
		SyncInterval: 1,
	})
	svc.startupDelay = 200 * time.Millisecond

	svc.Start()
	svc.Stop()

	// The loop must exit during the delay; no run may fire afterwards.
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&gateway.calls))
}

func TestRunFullSync_NoDatabase(t *testing.T) {
	svc := NewSyncService(testCatalog(), nil, Config{})

	_, _, err := svc.RunFullSync()
	require.Error(t, err)

	var storeErr *errs.StoreError
	assert.ErrorAs(t, err, &storeErr)
}
