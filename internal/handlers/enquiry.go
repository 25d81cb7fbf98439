package handlers

import (
	"net/http"

	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/enquiry"
	"github.com/diewo77/autoparts/internal/models"
)

type EnquiryHandler struct {
	svc *enquiry.Service
}

func NewEnquiryHandler(svc *enquiry.Service) *EnquiryHandler {
	return &EnquiryHandler{svc: svc}
}

func (h *EnquiryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	e, err := h.svc.Submit(r.Context(), enquiry.Request{
		Name:           f.Get("name"),
		Email:          f.Get("email"),
		Phone:          f.Get("phone"),
		CarModel:       f.Get("car_model"),
		ProductType:    f.Get("product_type"),
		Description:    f.Get("description"),
		DeliveryDate:   f.Get("delivery_date"),
		DeliveryWindow: f.Get("delivery_window"),
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *EnquiryHandler) Availability(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Availability(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

// AdminList lists every enquiry, newest first.
func (h *EnquiryHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if list == nil {
		list = []models.Enquiry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list})
}
