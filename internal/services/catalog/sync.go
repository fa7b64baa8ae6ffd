package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/giofarma/storefront/internal/database"
	"github.com/giofarma/storefront/internal/errs"
	"github.com/giofarma/storefront/internal/models"
	"github.com/giofarma/storefront/internal/services/odoo"
	"gorm.io/gorm/clause"
)

// Gateway is the slice of the Odoo client the sync engine needs. Injected
// so tests can substitute a fake.
type Gateway interface {
	SearchRead(model string, domain []interface{}, fields []string, limit int, order string, result interface{}) error
}

// Config holds sync engine settings
type Config struct {
	// OdooBaseURL is the ERP's public base URL, used to build product
	// image URLs.
	OdooBaseURL string
	// ProductLimit caps one product batch so a run fits inside an external
	// invocation time budget. Under the cap, ordering by write_date desc
	// means the most recently changed products win.
	ProductLimit int
	// SyncInterval in minutes; 0 disables the background loop.
	SyncInterval int
}

// SyncService performs full catalog refreshes from Odoo into the store.
// It is the only writer of product and category rows. Every write is an
// upsert keyed on the Odoo id, so a run is safely repeatable.
type SyncService struct {
	gateway Gateway
	db      *database.DB
	cfg     Config
	stop    chan struct{}

	// startupDelay postpones the first background run so startup finishes
	// before the ERP is hit.
	startupDelay time.Duration
}

// NewSyncService creates a new synchronization service
func NewSyncService(gateway Gateway, db *database.DB, cfg Config) *SyncService {
	if cfg.ProductLimit <= 0 {
		cfg.ProductLimit = 500
	}
	return &SyncService{
		gateway:      gateway,
		db:           db,
		cfg:          cfg,
		stop:         make(chan struct{}),
		startupDelay: 5 * time.Second,
	}
}

// odooCategory mirrors the product.category fields fetched per run
type odooCategory struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	ParentID odoo.OdooRelation `json:"parent_id"`
}

// odooProduct mirrors the product.product fields fetched per run
type odooProduct struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	DefaultCode      odoo.OdooString   `json:"default_code"`
	ListPrice        float64           `json:"list_price"`
	QtyAvailable     float64           `json:"qty_available"`
	VirtualAvailable float64           `json:"virtual_available"`
	DescriptionSale  odoo.OdooString   `json:"description_sale"`
	CategID          odoo.OdooRelation `json:"categ_id"`
	UomID            odoo.OdooRelation `json:"uom_id"`
	WriteDate        odoo.OdooTime     `json:"write_date"`
}

// RunFullSync performs one end-to-end refresh of categories and products,
// bounded by a sync_log entry. The log insert is best effort: a run without
// a run record beats no run at all.
func (s *SyncService) RunFullSync() (int, time.Duration, error) {
	if s.db == nil {
		return 0, 0, &errs.StoreError{Msg: "database not configured"}
	}

	start := time.Now().UTC()

	entry := models.SyncLog{
		SyncType:  models.SyncTypeFull,
		Status:    models.SyncStatusProcessing,
		StartedAt: start,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("⚠️ Sync: could not create sync_log entry: %v", err)
		entry.ID = 0
	}

	processed, err := s.refresh()

	end := time.Now().UTC()
	duration := end.Sub(start)

	if entry.ID != 0 {
		updates := map[string]interface{}{
			"completed_at":     end,
			"duration_seconds": int(duration.Seconds()),
		}
		if err != nil {
			updates["status"] = models.SyncStatusError
			updates["error_message"] = err.Error()
		} else {
			updates["status"] = models.SyncStatusSuccess
			updates["records_processed"] = processed
		}
		// A failed log update must never mask the sync result.
		if uerr := s.db.Model(&models.SyncLog{}).Where("id = ?", entry.ID).Updates(updates).Error; uerr != nil {
			log.Printf("⚠️ Sync: could not update sync_log entry %d: %v", entry.ID, uerr)
		}
	}

	if err != nil {
		return 0, duration, err
	}
	return processed, duration, nil
}

// refresh fetches and upserts categories, then products
func (s *SyncService) refresh() (int, error) {
	if err := s.syncCategories(); err != nil {
		return 0, err
	}
	return s.syncProducts()
}

// syncCategories pulls all product categories and upserts them in one batch
func (s *SyncService) syncCategories() error {
	var cats []odooCategory
	err := s.gateway.SearchRead("product.category", []interface{}{},
		[]string{"id", "name", "parent_id"}, 0, "", &cats)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return nil
	}

	rows := make([]models.Category, 0, len(cats))
	for _, cat := range cats {
		rows = append(rows, models.Category{
			OdooID:     cat.ID,
			Name:       cat.Name,
			ParentID:   cat.ParentID.IDPtr(),
			ParentName: cat.ParentID.NamePtr(),
			// Categories that disappear from Odoo are never deactivated
			// here; a referenced category must stay valid.
			Active: true,
		})
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "odoo_id"}},
		UpdateAll: true,
	}).Create(&rows).Error; err != nil {
		return &errs.StoreError{Msg: "failed to upsert categories", Err: err}
	}

	log.Printf("✅ Sync: upserted %d categories", len(rows))
	return nil
}

// syncProducts pulls sellable active products and upserts them in one batch
func (s *SyncService) syncProducts() (int, error) {
	domain := []interface{}{
		[]interface{}{"sale_ok", "=", true},
		[]interface{}{"active", "=", true},
	}

	var prods []odooProduct
	err := s.gateway.SearchRead("product.product", domain, []string{
		"id", "name", "default_code", "list_price",
		"qty_available", "virtual_available", "description_sale",
		"categ_id", "uom_id", "write_date",
	}, s.cfg.ProductLimit, "write_date desc", &prods)
	if err != nil {
		return 0, err
	}

	// An empty filtered catalog is an anomaly, not a valid result.
	if len(prods) == 0 {
		return 0, errors.New("no products returned from Odoo")
	}

	now := time.Now().UTC()
	rows := make([]models.Product, 0, len(prods))
	for _, prod := range prods {
		raw, _ := json.Marshal(prod)
		rows = append(rows, models.Product{
			OdooID:           prod.ID,
			Name:             prod.Name,
			SKU:              prod.DefaultCode.Ptr(),
			ListPrice:        prod.ListPrice,
			QtyAvailable:     prod.QtyAvailable,
			VirtualAvailable: prod.VirtualAvailable,
			Description:      prod.DescriptionSale.Ptr(),
			CategoryID:       prod.CategID.IDPtr(),
			CategoryName:     prod.CategID.NamePtr(),
			UomName:          prod.UomID.NamePtr(),
			ImageURL:         fmt.Sprintf("%s/web/image/product.product/%d/image_512", s.cfg.OdooBaseURL, prod.ID),
			Active:           true,
			WriteDate:        prod.WriteDate.Time,
			LastSyncedAt:     now,
			RawData:          raw,
		})
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "odoo_id"}},
		UpdateAll: true,
	}).Create(&rows).Error; err != nil {
		return 0, &errs.StoreError{Msg: "failed to upsert products", Err: err}
	}

	log.Printf("✅ Sync: upserted %d products", len(rows))
	return len(rows), nil
}

// Start begins the background synchronization loop
func (s *SyncService) Start() {
	if s.cfg.SyncInterval <= 0 {
		log.Println("📡 Catalog sync loop disabled (SYNC_INTERVAL not set)")
		return
	}

	go func() {
		log.Println("📡 Catalog sync loop started")

		// Initial sync delay so startup finishes first; Stop during the
		// delay must not hold shutdown hostage.
		select {
		case <-time.After(s.startupDelay):
		case <-s.stop:
			log.Println("🛑 Catalog sync loop stopped")
			return
		}
		if _, _, err := s.RunFullSync(); err != nil {
			log.Printf("❌ Sync error: %v", err)
		}

		ticker := time.NewTicker(time.Duration(s.cfg.SyncInterval) * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, _, err := s.RunFullSync(); err != nil {
					log.Printf("❌ Sync error: %v", err)
				}
			case <-s.stop:
				log.Println("🛑 Catalog sync loop stopped")
				return
			}
		}
	}()
}

// Stop halts the background loop
func (s *SyncService) Stop() {
	close(s.stop)
}
