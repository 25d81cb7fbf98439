package quotation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"gorm.io/gorm"
)

const numberAttempts = 3

// StaleStatusError means the row changed status between read and write.
type StaleStatusError struct {
	ID       uint
	Expected Status
}

func (e *StaleStatusError) Error() string {
	return fmt.Sprintf("quotation %d is no longer %s", e.ID, e.Expected)
}

func (e *StaleStatusError) ConflictCode() string { return "status_changed" }

// ListFilter narrows List; nil fields are ignored.
type ListFilter struct {
	Status *Status
	UserID *uint
}

// Repository persists quotations. Every error it returns is already mapped
// onto the apperr taxonomy.
type Repository interface {
	// CreateWithItems assigns a number and inserts the header and all its
	// items in one transaction.
	CreateWithItems(ctx context.Context, q *models.Quotation) error
	Get(ctx context.Context, id uint) (*models.Quotation, error)
	List(ctx context.Context, f ListFilter) ([]models.Quotation, error)
	// UpdateStatus returns the updated quotation and the status it left.
	UpdateStatus(ctx context.Context, id uint, to Status) (*models.Quotation, Status, error)
	UpdateDetails(ctx context.Context, id uint, notes *string, validUntil *time.Time) (*models.Quotation, error)
}

type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) CreateWithItems(ctx context.Context, q *models.Quotation) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	var err error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, nerr := nextNumber(tx, q.CreatedAt)
			if nerr != nil {
				return nerr
			}
			q.Number = number
			return tx.Create(q).Error
		})
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		// Lost a race for the number; the rolled-back ids must not leak into the retry.
		q.ID = 0
		for i := range q.Items {
			q.Items[i].ID, q.Items[i].QuotationID = 0, 0
		}
	}
	if err != nil {
		q.Number = ""
		return &apperr.RemoteOperationError{Op: "create quotation", Err: err}
	}
	return nil
}

// nextNumber returns QT-<year>-<seq>, seq being one more than the highest
// number issued that year, zero-padded to four digits.
func nextNumber(tx *gorm.DB, at time.Time) (string, error) {
	prefix := fmt.Sprintf("QT-%d-", at.Year())
	var last []string
	err := tx.Model(&models.Quotation{}).
		Where("number LIKE ?", prefix+"%").
		Order("LENGTH(number) DESC, number DESC").
		Limit(1).
		Pluck("number", &last).Error
	if err != nil {
		return "", fmt.Errorf("read last number: %w", err)
	}
	seq := 1
	if len(last) == 1 {
		n, perr := strconv.Atoi(strings.TrimPrefix(last[0], prefix))
		if perr != nil {
			return "", fmt.Errorf("malformed quotation number %q", last[0])
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func (r *GormRepository) Get(ctx context.Context, id uint) (*models.Quotation, error) {
	var q models.Quotation
	err := r.DB.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("quotation %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Remote("load quotation", err)
	}
	return &q, nil
}

func (r *GormRepository) List(ctx context.Context, f ListFilter) ([]models.Quotation, error) {
	q := r.DB.WithContext(ctx).Order("created_at DESC, id DESC")
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	var out []models.Quotation
	if err := q.Find(&out).Error; err != nil {
		return nil, apperr.Remote("list quotations", err)
	}
	return out, nil
}

// UpdateStatus validates the move against the current row and writes it
// only if the status is still the one that was read.
func (r *GormRepository) UpdateStatus(ctx context.Context, id uint, to Status) (*models.Quotation, Status, error) {
	var (
		q    models.Quotation
		from Status
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&q, id).Error; err != nil {
			return err
		}
		from = q.Status
		if err := Transition(from, to); err != nil {
			return err
		}
		now := time.Now()
		res := tx.Model(&models.Quotation{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]any{"status": to, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &StaleStatusError{ID: id, Expected: from}
		}
		q.Status, q.UpdatedAt = to, now
		return nil
	})
	var te *TransitionError
	var se *StaleStatusError
	switch {
	case err == nil:
		return &q, from, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, "", fmt.Errorf("quotation %d: %w", id, apperr.ErrNotFound)
	case errors.As(err, &te), errors.As(err, &se):
		return nil, from, err
	default:
		return nil, from, apperr.Remote("update quotation status", err)
	}
}

// UpdateDetails edits the admin-owned fields. Amounts and items never change.
func (r *GormRepository) UpdateDetails(ctx context.Context, id uint, notes *string, validUntil *time.Time) (*models.Quotation, error) {
	updates := map[string]any{}
	if notes != nil {
		updates["notes"] = *notes
	}
	if validUntil != nil {
		updates["valid_until"] = *validUntil
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		res := r.DB.WithContext(ctx).Model(&models.Quotation{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, apperr.Remote("update quotation", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("quotation %d: %w", id, apperr.ErrNotFound)
		}
	}
	return r.Get(ctx, id)
}
