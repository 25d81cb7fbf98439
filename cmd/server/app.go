package main

import (
	"log"
	"net/http"
	"time"

	"github.com/diewo77/autoparts/auth"
	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/metrics"
	"github.com/diewo77/autoparts/internal/policy"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	routerCfg *policy.RouterConfig
	logger    *log.Logger
	handler   http.Handler
}

// NewApp creates the application with all routes and middleware configured.
func NewApp(db *gorm.DB, routerCfg *policy.RouterConfig, logger *log.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		routerCfg: routerCfg,
		logger:    logger,
	}
	app.setupRoutes()

	// metrics.Middleware sits directly on the mux so it sees r.Pattern.
	var h http.Handler = metrics.Middleware(app.mux)
	h = auth.Middleware(h)
	h = app.withLogging(h)
	h = middleware.Recoverer(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	app.handler = h
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	cfg := a.routerCfg

	// Public
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.Handle("GET /metrics", promhttp.Handler())

	ch := cfg.CartHandler
	a.mux.HandleFunc("GET /api/cart", ch.Get)
	a.mux.HandleFunc("DELETE /api/cart", ch.Clear)
	a.mux.HandleFunc("POST /api/cart/items", ch.AddItem)
	a.mux.HandleFunc("PATCH /api/cart/items/{id}", ch.UpdateItem)
	a.mux.HandleFunc("DELETE /api/cart/items/{id}", ch.RemoveItem)

	cat := cfg.CatalogHandler
	a.mux.HandleFunc("GET /api/catalog", cat.List)
	a.mux.HandleFunc("GET /api/catalog/facets", cat.Facets)
	a.mux.HandleFunc("GET /api/new-arrivals", cat.NewArrivals)

	eh := cfg.EnquiryHandler
	a.mux.HandleFunc("POST /api/enquiries", eh.Submit)
	a.mux.HandleFunc("GET /api/enquiries/availability", eh.Availability)

	// Anonymous visitors may submit; a signed-in customer gets the quotation linked.
	qh := cfg.QuotationHandler
	a.mux.HandleFunc("POST /api/quotations", qh.Submit)

	ah := cfg.AuthHandler
	a.mux.HandleFunc("POST /api/auth/signup", ah.Signup)
	a.mux.HandleFunc("POST /api/auth/login", ah.Login)
	a.mux.HandleFunc("POST /api/auth/logout", ah.Logout)

	// Authenticated
	a.mux.Handle("GET /api/auth/me", auth.RequireAuth(http.HandlerFunc(ah.Me)))
	a.mux.Handle("GET /api/me/quotations", auth.RequireAuth(http.HandlerFunc(qh.Mine)))
	a.mux.Handle("GET /api/quotations/{id}", auth.RequireAuth(http.HandlerFunc(qh.Get)))

	// Admin
	ph := cfg.ProductHandler
	a.admin("GET /api/admin/products", ph.List)
	a.admin("POST /api/admin/products", ph.Create)
	a.admin("GET /api/admin/products/{id}", ph.Get)
	a.admin("PUT /api/admin/products/{id}", ph.Update)
	a.admin("DELETE /api/admin/products/{id}", ph.Delete)

	lh := cfg.LookupHandler
	a.admin("GET /api/admin/lookups", lh.Lookups)
	a.admin("GET /api/admin/brands", lh.ListBrands)
	a.admin("POST /api/admin/brands", lh.CreateBrand)
	a.admin("DELETE /api/admin/brands/{id}", lh.DeleteBrand)
	a.admin("GET /api/admin/categories", lh.ListCategories)
	a.admin("POST /api/admin/categories", lh.CreateCategory)
	a.admin("DELETE /api/admin/categories/{id}", lh.DeleteCategory)

	nh := cfg.NewArrivalHandler
	a.admin("GET /api/admin/new-arrivals", nh.List)
	a.admin("POST /api/admin/new-arrivals", nh.Create)
	a.admin("PUT /api/admin/new-arrivals/{id}", nh.Update)
	a.admin("DELETE /api/admin/new-arrivals/{id}", nh.Delete)

	aqh := cfg.AdminQuotationHandler
	a.admin("GET /api/admin/quotations", aqh.List)
	a.admin("GET /api/admin/quotations/{id}", aqh.Get)
	a.admin("PATCH /api/admin/quotations/{id}", aqh.Update)
	a.admin("POST /api/admin/quotations/{id}/status", aqh.ChangeStatus)

	uh := cfg.AdminUserHandler
	a.admin("GET /api/admin/users", uh.List)
	a.admin("PUT /api/admin/users/{id}/roles/{role}", uh.GrantRole)
	a.admin("DELETE /api/admin/users/{id}/roles/{role}", uh.RevokeRole)

	a.admin("GET /api/admin/enquiries", eh.AdminList)
	a.admin("GET /api/admin/stats", cfg.StatsHandler.Get)
}

// admin registers a route behind authentication and the admin role.
func (a *App) admin(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, auth.RequireAuth(a.routerCfg.AuthGate.RequireAdmin()(h)))
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loggingWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggingWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withLogging logs one line per request, tagged with the request id.
func (a *App) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lw, r)
		a.logger.Printf("[%s] %s %s %d %s", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, lw.status, time.Since(start))
	})
}
