package policy

import (
	"log"
	"time"

	"github.com/diewo77/autoparts/internal/cart"
	"github.com/diewo77/autoparts/internal/catalog"
	"github.com/diewo77/autoparts/internal/config"
	"github.com/diewo77/autoparts/internal/enquiry"
	"github.com/diewo77/autoparts/internal/events"
	"github.com/diewo77/autoparts/internal/handlers"
	"github.com/diewo77/autoparts/internal/quotation"
	"gorm.io/gorm"
)

// roleCacheTTL bounds how long a role change takes to apply without
// an explicit invalidation.
const roleCacheTTL = 5 * time.Minute

// RouterConfig holds the configured handlers and the gate guarding them.
type RouterConfig struct {
	AuthGate *AuthGate

	// Storefront
	CartHandler      *handlers.CartHandler
	CatalogHandler   *handlers.CatalogHandler
	QuotationHandler *handlers.QuotationHandler
	EnquiryHandler   *handlers.EnquiryHandler
	AuthHandler      *handlers.AuthHandler

	// Admin
	ProductHandler        *handlers.ProductHandler
	LookupHandler         *handlers.LookupHandler
	NewArrivalHandler     *handlers.NewArrivalHandler
	AdminQuotationHandler *handlers.AdminQuotationHandler
	StatsHandler          *handlers.StatsHandler
	AdminUserHandler      *handlers.AdminUserHandler

	// Services
	QuotationService *quotation.Service
	EnquiryService   *enquiry.Service
}

// NewRouterConfig wires the gate, its ownership policies, the services and
// every handler. publisher may be events.NopPublisher{} when no broker is set.
func NewRouterConfig(db *gorm.DB, cfg *config.Config, publisher events.Publisher, logger *log.Logger) *RouterConfig {
	authGate := NewAuthGate(db, roleCacheTTL)
	authGate.RegisterPolicy("quotation", NewOwnershipPolicy())

	var provider cart.Provider = cart.GormProvider{DB: db}
	if cfg.Cart.Backend == config.CartBackendFile {
		provider = cart.FileProvider{Dir: cfg.Cart.Dir}
	}
	sessions := &handlers.CartSessions{Provider: provider}

	repo := quotation.NewGormRepository(db)
	submitter := &quotation.Submitter{
		Repo:     repo,
		Calc:     quotation.Calculator{TaxRate: cfg.Quotation.TaxRate},
		Events:   publisher,
		Logger:   logger,
		Validity: time.Duration(cfg.Quotation.ValidityDays) * 24 * time.Hour,
	}
	quotationSvc := &quotation.Service{Repo: repo, Events: publisher, Logger: logger}
	enquirySvc := &enquiry.Service{
		DB:            db,
		DailyCapacity: cfg.Enquiry.DailyCapacity,
		Events:        publisher,
		Logger:        logger,
	}

	return &RouterConfig{
		AuthGate:              authGate,
		CartHandler:           handlers.NewCartHandler(sessions),
		CatalogHandler:        handlers.NewCatalogHandler(catalog.NewService(db)),
		QuotationHandler:      handlers.NewQuotationHandler(sessions, submitter, repo, authGate),
		EnquiryHandler:        handlers.NewEnquiryHandler(enquirySvc),
		AuthHandler:           handlers.NewAuthHandler(db, authGate, cfg.Auth.TokenTTL),
		ProductHandler:        handlers.NewProductHandler(db),
		LookupHandler:         handlers.NewLookupHandler(db),
		NewArrivalHandler:     handlers.NewNewArrivalHandler(db),
		AdminQuotationHandler: handlers.NewAdminQuotationHandler(repo, quotationSvc),
		StatsHandler:          handlers.NewStatsHandler(db),
		AdminUserHandler:      handlers.NewAdminUserHandler(db, authGate.CacheResolver),
		QuotationService:      quotationSvc,
		EnquiryService:        enquirySvc,
	}
}
