package handlers

import (
	"net/http"

	"github.com/diewo77/autoparts/auth"
	"github.com/diewo77/autoparts/gate"
	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/internal/quotation"
	"github.com/shopspring/decimal"
)

type QuotationHandler struct {
	sessions  *CartSessions
	submitter *quotation.Submitter
	repo      quotation.Repository
	gate      Authorizer
}

func NewQuotationHandler(sessions *CartSessions, submitter *quotation.Submitter, repo quotation.Repository, gate Authorizer) *QuotationHandler {
	return &QuotationHandler{sessions: sessions, submitter: submitter, repo: repo, gate: gate}
}

type submitResponse struct {
	ID          uint             `json:"id"`
	Number      string           `json:"number"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	TaxAmount   decimal.Decimal  `json:"tax_amount"`
	FinalAmount decimal.Decimal  `json:"final_amount"`
	Status      quotation.Status `json:"status"`
}

// Submit serves POST /api/quotations: the visitor's cart plus contact details.
func (h *QuotationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	// Held through the submit so no line can land between the snapshot and
	// the clear.
	store, release, err := h.sessions.Open(w, r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	defer release()
	var userID *uint
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		userID = &uid
	}
	details := quotation.CustomerDetails{
		Name:    f.Get("name"),
		Email:   f.Get("email"),
		Phone:   f.Get("phone"),
		Company: f.Get("company"),
		Notes:   f.Get("notes"),
	}
	q, err := h.submitter.Submit(r.Context(), store, details, userID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, submitResponse{
		ID:          q.ID,
		Number:      q.Number,
		Subtotal:    q.Subtotal,
		TaxAmount:   q.TaxAmount,
		FinalAmount: q.FinalAmount,
		Status:      q.Status,
	})
}

// Mine lists the signed-in user's quotations.
func (h *QuotationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.ErrUnauthenticated)
		return
	}
	list, err := h.repo.List(r.Context(), quotation.ListFilter{UserID: &uid})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if list == nil {
		list = []models.Quotation{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list})
}

// Get returns one quotation with its items to its owner or an admin.
func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	if err := h.gate.Authorize(r.Context(), gate.ActionView, "quotation", q); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}
