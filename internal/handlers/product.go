package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/validation"
	"gorm.io/gorm"
)

// ProductHandler is the admin CRUD for products.
type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	page, limit := pagination(r)

	db := h.db.WithContext(r.Context()).Model(&models.Product{})
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		httpx.Error(w, apperr.Remote("count products", err))
		return
	}
	products := []models.Product{}
	if err := db.Preload("Brand").Preload("Category").Order("name").Limit(limit).Offset((page - 1) * limit).Find(&products).Error; err != nil {
		httpx.Error(w, apperr.Remote("list products", err))
		return
	}
	httpx.JSON(w, http.StatusOK, Page[models.Product]{Items: products, Page: page, Limit: limit, Total: total})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	product := models.Product{InStock: true}
	if err := h.bind(r.Context(), &product, f); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Create(&product).Error; err != nil {
		httpx.Error(w, productWriteError("create product", err))
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	product, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if err := h.bind(r.Context(), product, f); err != nil {
		httpx.Error(w, err)
		return
	}
	// Save would also write the stale preloaded associations.
	product.Brand, product.Category = nil, nil
	if err := h.db.WithContext(r.Context()).Omit("Brand", "Category").Save(product).Error; err != nil {
		httpx.Error(w, productWriteError("update product", err))
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete soft-deletes the product; its new-arrival entries stop showing
// because the storefront query joins on live products.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	res := h.db.WithContext(r.Context()).Delete(&models.Product{}, id)
	if res.Error != nil {
		httpx.Error(w, apperr.Remote("delete product", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, apperr.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) load(r *http.Request) (*models.Product, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := h.db.WithContext(r.Context()).Preload("Brand").Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Remote("load product", err)
	}
	return &product, nil
}

// bind validates the submitted fields onto p. Update requests may omit
// fields; absent ones keep their current value.
func (h *ProductHandler) bind(ctx context.Context, p *models.Product, f httpx.Fields) error {
	creating := p.ID == 0
	v := validation.Violations{}

	if creating || f.Has("name") {
		p.Name = strings.TrimSpace(f.Get("name"))
		validation.Required("name", p.Name, v)
	}
	if creating || f.Has("sku") {
		p.SKU = strings.ToUpper(strings.TrimSpace(f.Get("sku")))
		validation.Required("sku", p.SKU, v)
	}
	if creating || f.Has("price") {
		p.Price = validation.Decimal("price", f.Get("price"), v)
		validation.NonNegative("price", p.Price, v)
		validation.Cents("price", p.Price, v)
	}
	if f.Has("description") {
		p.Description = strings.TrimSpace(f.Get("description"))
	}
	if f.Has("image_url") {
		p.ImageURL = strings.TrimSpace(f.Get("image_url"))
	}
	if f.Has("in_stock") {
		p.InStock = validation.Bool("in_stock", f.Get("in_stock"), v)
	}
	if f.Has("stock_quantity") {
		p.StockQuantity = validation.OptionalInt("stock_quantity", f.Get("stock_quantity"), 0, v)
		if p.StockQuantity < 0 {
			v.Add("stock_quantity", validation.CodeNegative)
		}
	}
	if f.Has("brand_id") {
		p.BrandID = validation.OptionalUint("brand_id", f.Get("brand_id"), v)
	}
	if f.Has("category_id") {
		p.CategoryID = validation.OptionalUint("category_id", f.Get("category_id"), v)
	}
	if err := apperr.Validation(v); err != nil {
		return err
	}

	if p.BrandID != nil {
		if err := h.exists(ctx, &models.Brand{}, *p.BrandID, "brand_id", v); err != nil {
			return err
		}
	}
	if p.CategoryID != nil {
		if err := h.exists(ctx, &models.Category{}, *p.CategoryID, "category_id", v); err != nil {
			return err
		}
	}
	return apperr.Validation(v)
}

// exists records field as not_found when no row of model has id.
func (h *ProductHandler) exists(ctx context.Context, model any, id uint, field string, v validation.Violations) error {
	var count int64
	if err := h.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Remote("check "+field, err)
	}
	if count == 0 {
		v.Add(field, "not_found")
	}
	return nil
}

func productWriteError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrAlreadyExists
	}
	return apperr.Remote(op, err)
}
