package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/validation"
	"gorm.io/gorm"
)

// LookupHandler manages brands and categories.
type LookupHandler struct {
	db *gorm.DB
}

func NewLookupHandler(db *gorm.DB) *LookupHandler {
	return &LookupHandler{db: db}
}

func (h *LookupHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands := []models.Brand{}
	if err := h.db.WithContext(r.Context()).Order("name").Find(&brands).Error; err != nil {
		httpx.Error(w, apperr.Remote("list brands", err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": brands})
}

func (h *LookupHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	name, err := lookupName(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	brand := models.Brand{Name: name}
	if err := h.db.WithContext(r.Context()).Create(&brand).Error; err != nil {
		httpx.Error(w, lookupWriteError("create brand", err))
		return
	}
	httpx.JSON(w, http.StatusCreated, brand)
}

func (h *LookupHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, &models.Brand{}, "brand_id")
}

func (h *LookupHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := []models.Category{}
	if err := h.db.WithContext(r.Context()).Order("name").Find(&categories).Error; err != nil {
		httpx.Error(w, apperr.Remote("list categories", err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": categories})
}

func (h *LookupHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	name, err := lookupName(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	category := models.Category{Name: name}
	if err := h.db.WithContext(r.Context()).Create(&category).Error; err != nil {
		httpx.Error(w, lookupWriteError("create category", err))
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

func (h *LookupHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, &models.Category{}, "category_id")
}

// delete detaches products referencing the row before removing it, so
// products keep existing without the lookup.
func (h *LookupHandler) delete(w http.ResponseWriter, r *http.Request, model any, column string) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var affected int64
	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Unscoped().Where(column+" = ?", id).Update(column, nil).Error; err != nil {
			return err
		}
		res := tx.Delete(model, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		httpx.Error(w, apperr.Remote("delete "+strings.TrimSuffix(column, "_id"), err))
		return
	}
	if affected == 0 {
		httpx.Error(w, apperr.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type lookups struct {
	Brands     []models.Brand    `json:"brands"`
	Categories []models.Category `json:"categories"`
}

// Lookups loads brands and categories concurrently for the product form.
func (h *LookupHandler) Lookups(w http.ResponseWriter, r *http.Request) {
	var (
		wg         sync.WaitGroup
		out        = lookups{Brands: []models.Brand{}, Categories: []models.Category{}}
		errB, errC error
	)
	ctx := r.Context()
	wg.Add(2)
	go func() {
		defer wg.Done()
		errB = h.db.WithContext(ctx).Order("name").Find(&out.Brands).Error
	}()
	go func() {
		defer wg.Done()
		errC = h.db.WithContext(ctx).Order("name").Find(&out.Categories).Error
	}()
	wg.Wait()
	if err := errors.Join(errB, errC); err != nil {
		httpx.Error(w, apperr.Remote("load lookups", err))
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func lookupName(r *http.Request) (string, error) {
	f, err := httpx.ReadFields(r)
	if err != nil {
		return "", apperr.Validation(validation.Violations{"body": "invalid"})
	}
	name := strings.TrimSpace(f.Get("name"))
	v := validation.Violations{}
	validation.Required("name", name, v)
	return name, apperr.Validation(v)
}

func lookupWriteError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrAlreadyExists
	}
	return apperr.Remote(op, err)
}
