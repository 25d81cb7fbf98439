package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"gorm.io/gorm"
)

type StatsHandler struct {
	db *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

type dashboardStats struct {
	TotalProducts     int64 `json:"total_products"`
	TotalQuotations   int64 `json:"total_quotations"`
	PendingQuotations int64 `json:"pending_quotations"`
	TotalCustomers    int64 `json:"total_customers"`
}

// Get runs the dashboard counts concurrently.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	db := h.db.WithContext(r.Context())
	var stats dashboardStats
	counts := []struct {
		query func() *gorm.DB
		dst   *int64
	}{
		{func() *gorm.DB { return db.Model(&models.Product{}) }, &stats.TotalProducts},
		{func() *gorm.DB { return db.Model(&models.Quotation{}) }, &stats.TotalQuotations},
		{func() *gorm.DB {
			return db.Model(&models.Quotation{}).Where("status = ?", models.QuotationPending)
		}, &stats.PendingQuotations},
		{func() *gorm.DB {
			return db.Model(&models.UserRole{}).Where("role = ?", models.RoleCustomer)
		}, &stats.TotalCustomers},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(counts))
	for i, c := range counts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = c.query().Count(c.dst).Error
		}()
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		httpx.Error(w, apperr.Remote("load stats", err))
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
