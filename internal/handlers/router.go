package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/giofarma/storefront/internal/errs"
	"github.com/giofarma/storefront/internal/middleware"
	"github.com/giofarma/storefront/internal/services/catalog"
	"github.com/giofarma/storefront/internal/services/orders"
	"github.com/gorilla/mux"
)

// Router wraps the mux router and the services behind the HTTP surface
type Router struct {
	*mux.Router
	catalog *catalog.Query
	orders  *orders.Service
	sync    *catalog.SyncService
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(catalogQuery *catalog.Query, orderService *orders.Service, syncService *catalog.SyncService, cronSecret string) *Router {
	r := &Router{
		Router:  mux.NewRouter(),
		catalog: catalogQuery,
		orders:  orderService,
		sync:    syncService,
	}

	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", r.listProducts).Methods("GET")
	api.HandleFunc("/categories", r.listCategories).Methods("GET")
	api.HandleFunc("/orders", r.createOrder).Methods("POST")
	api.HandleFunc("/orders", r.listOrders).Methods("GET")
	api.Handle("/sync", middleware.SyncAuth(cronSecret)(http.HandlerFunc(r.runSync))).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a structured failure envelope. Raw error detail never
// crosses the boundary beyond the error's own message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondServiceError maps the error taxonomy to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *errs.ValidationError
		configErr     *errs.ConfigurationError
		authErr       *errs.AuthenticationError
		timeoutErr    *errs.TimeoutError
		remoteErr     *errs.RemoteCallError
		storeErr      *errs.StoreError
	)

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &configErr):
		respondError(w, http.StatusServiceUnavailable, configErr.Error())
	case errors.As(err, &authErr), errors.As(err, &timeoutErr), errors.As(err, &remoteErr):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &storeErr):
		respondError(w, http.StatusInternalServerError, storeErr.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
