package handlers

import (
	"net/http"

	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/catalog"
	"github.com/diewo77/autoparts/validation"
)

type CatalogHandler struct {
	svc *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// List serves GET /api/catalog?q=&category=&brand=.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.Search(r.Context(), catalog.Filter{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *CatalogHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.svc.Facets(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, facets)
}

// NewArrivals serves GET /api/new-arrivals; featured=1 keeps featured entries only.
func (h *CatalogHandler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	featured := validation.Bool("featured", r.URL.Query().Get("featured"), v)
	if !v.Empty() {
		featured = false
	}
	items, err := h.svc.NewArrivals(r.Context(), featured)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}
