package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxRating = 5

type NewArrivalHandler struct {
	db *gorm.DB
}

func NewNewArrivalHandler(db *gorm.DB) *NewArrivalHandler {
	return &NewArrivalHandler{db: db}
}

func (h *NewArrivalHandler) List(w http.ResponseWriter, r *http.Request) {
	arrivals := []models.NewArrival{}
	if err := h.db.WithContext(r.Context()).Preload("Product").Order("arrival_date DESC, id DESC").Find(&arrivals).Error; err != nil {
		httpx.Error(w, apperr.Remote("list new arrivals", err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": arrivals})
}

func (h *NewArrivalHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	var arrival models.NewArrival
	if err := h.bind(r.Context(), &arrival, f); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Omit("Product").Create(&arrival).Error; err != nil {
		httpx.Error(w, apperr.Remote("create new arrival", err))
		return
	}
	httpx.JSON(w, http.StatusCreated, arrival)
}

func (h *NewArrivalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var arrival models.NewArrival
	if err := h.db.WithContext(r.Context()).First(&arrival, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrNotFound)
			return
		}
		httpx.Error(w, apperr.Remote("load new arrival", err))
		return
	}
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if err := h.bind(r.Context(), &arrival, f); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Omit("Product").Save(&arrival).Error; err != nil {
		httpx.Error(w, apperr.Remote("update new arrival", err))
		return
	}
	httpx.JSON(w, http.StatusOK, arrival)
}

func (h *NewArrivalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	res := h.db.WithContext(r.Context()).Delete(&models.NewArrival{}, id)
	if res.Error != nil {
		httpx.Error(w, apperr.Remote("delete new arrival", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, apperr.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bind applies the submitted fields to a. On create product_id and
// arrival_date are required; on update absent fields are left alone.
// The discount is recomputed from the prices unless it was given.
func (h *NewArrivalHandler) bind(ctx context.Context, a *models.NewArrival, f httpx.Fields) error {
	creating := a.ID == 0
	v := validation.Violations{}

	if creating || f.Has("product_id") {
		a.ProductID = validation.Uint("product_id", f.Get("product_id"), v)
	}
	if creating || f.Has("arrival_date") {
		a.ArrivalDate = validation.Date("arrival_date", f.Get("arrival_date"), v)
	}
	if f.Has("original_price") {
		a.OriginalPrice = nullDecimal("original_price", f.Get("original_price"), v)
	}
	if f.Has("sale_price") {
		a.SalePrice = nullDecimal("sale_price", f.Get("sale_price"), v)
	}
	if f.Has("rating") {
		a.Rating = validation.OptionalFloat("rating", f.Get("rating"), 0, v)
		validation.RangeFloat("rating", a.Rating, 0, maxRating, v)
	}
	if f.Has("is_featured") {
		a.IsFeatured = validation.Bool("is_featured", f.Get("is_featured"), v)
	}
	if f.Has("is_best_seller") {
		a.IsBestSeller = validation.Bool("is_best_seller", f.Get("is_best_seller"), v)
	}
	if f.Has("discount_percentage") && f.Get("discount_percentage") != "" {
		a.DiscountPercentage = validation.Int("discount_percentage", f.Get("discount_percentage"), v)
		if a.DiscountPercentage < 0 || a.DiscountPercentage > 100 {
			v.Add("discount_percentage", validation.CodeOutOfRange)
		}
	} else if pct, ok := a.ComputeDiscount(); ok {
		a.DiscountPercentage = pct
	}
	if err := apperr.Validation(v); err != nil {
		return err
	}

	var count int64
	if err := h.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", a.ProductID).Count(&count).Error; err != nil {
		return apperr.Remote("check product_id", err)
	}
	if count == 0 {
		v.Add("product_id", "not_found")
	}
	return apperr.Validation(v)
}

func nullDecimal(field, raw string, v validation.Violations) decimal.NullDecimal {
	d := validation.OptionalDecimal(field, raw, v)
	if d == nil {
		return decimal.NullDecimal{}
	}
	validation.NonNegative(field, *d, v)
	validation.Cents(field, *d, v)
	return decimal.NewNullDecimal(*d)
}
