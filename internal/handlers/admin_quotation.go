package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/internal/quotation"
	"github.com/diewo77/autoparts/validation"
)

// AdminQuotationHandler reviews submitted quotations. There is no delete.
type AdminQuotationHandler struct {
	repo quotation.Repository
	svc  *quotation.Service
}

func NewAdminQuotationHandler(repo quotation.Repository, svc *quotation.Service) *AdminQuotationHandler {
	return &AdminQuotationHandler{repo: repo, svc: svc}
}

// List filters by ?status=; "all" or an empty value lists everything.
func (h *AdminQuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter quotation.ListFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" && raw != "all" {
		status, err := quotation.ParseStatus(raw)
		if err != nil {
			httpx.Error(w, apperr.Validation(validation.Violations{"status": validation.CodeNotAllowed}))
			return
		}
		filter.Status = &status
	}
	list, err := h.repo.List(r.Context(), filter)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if list == nil {
		list = []models.Quotation{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list})
}

func (h *AdminQuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	q, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Update edits notes and valid_until. An empty valid_until is ignored.
func (h *AdminQuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	v := validation.Violations{}
	var (
		notes      *string
		validUntil *time.Time
	)
	if f.Has("notes") {
		n := strings.TrimSpace(f.Get("notes"))
		notes = &n
	}
	if strings.TrimSpace(f.Get("valid_until")) != "" {
		t := validation.Date("valid_until", f.Get("valid_until"), v)
		validUntil = &t
	}
	if err := apperr.Validation(v); err != nil {
		httpx.Error(w, err)
		return
	}
	q, err := h.repo.UpdateDetails(r.Context(), id, notes, validUntil)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// ChangeStatus applies {status} through the quotation state machine.
func (h *AdminQuotationHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	raw := strings.TrimSpace(f.Get("status"))
	if raw == "" {
		httpx.Error(w, apperr.Validation(validation.Violations{"status": validation.CodeRequired}))
		return
	}
	to, err := quotation.ParseStatus(raw)
	if err != nil {
		httpx.Error(w, apperr.Validation(validation.Violations{"status": validation.CodeNotAllowed}))
		return
	}
	q, err := h.svc.ChangeStatus(r.Context(), id, to)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}
