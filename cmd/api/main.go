package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giofarma/storefront/internal/config"
	"github.com/giofarma/storefront/internal/database"
	"github.com/giofarma/storefront/internal/handlers"
	"github.com/giofarma/storefront/internal/models"
	"github.com/giofarma/storefront/internal/services/catalog"
	"github.com/giofarma/storefront/internal/services/odoo"
	"github.com/giofarma/storefront/internal/services/orders"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (detects embedded vs external automatically).
	// A failed connection degrades reads to "not configured" errors instead
	// of crashing the process.
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Printf("⚠️ Database unavailable: %v", err)
		db = nil
	}

	// 3. Synchronize schema
	if db != nil {
		log.Println("🚀 Synchronizing database schema...")
		err = db.AutoMigrate(
			&models.Category{},
			&models.Product{},
			&models.Customer{},
			&models.Order{},
			&models.OrderLine{},
			&models.SyncLog{},
		)
		if err != nil {
			log.Printf("⚠️ Migration warning: %v\n", err)
		} else {
			log.Println("✅ Schema synchronized successfully")
		}
	}

	// 4. Build the Odoo gateway and services
	gateway := odoo.NewClient(cfg.Odoo.URL, cfg.Odoo.Database, cfg.Odoo.Username, cfg.Odoo.APIKey)

	syncService := catalog.NewSyncService(gateway, db, catalog.Config{
		OdooBaseURL:  gateway.URL,
		ProductLimit: cfg.Odoo.ProductLimit,
		SyncInterval: cfg.Odoo.SyncInterval,
	})
	syncService.Start()

	catalogQuery := catalog.NewQuery(db)
	orderService := orders.NewService(gateway, db)

	// 5. HTTP router
	router := handlers.NewRouter(catalogQuery, orderService, syncService, cfg.CronSecret)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// 6. Start server with graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	syncService.Stop()

	if db != nil {
		log.Println("🛑 Closing database connection...")
		if err := db.Close(); err != nil {
			log.Printf("Database close error: %v", err)
		}
	}

	log.Println("✅ Shutdown complete")
}
