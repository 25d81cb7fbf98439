package quotation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/dbtest"
	"github.com/diewo77/autoparts/internal/events"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/internal/quotation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newQuotation(at time.Time, items ...models.QuotationItem) *models.Quotation {
	return &models.Quotation{
		CreatedAt:     at,
		CustomerName:  "Ana Diaz",
		CustomerEmail: "ana@example.com",
		CustomerPhone: "0612345678",
		Subtotal:      decimal.NewFromInt(200),
		TaxRate:       quotation.DefaultTaxRate,
		TaxAmount:     decimal.NewFromInt(10),
		FinalAmount:   decimal.NewFromInt(210),
		Status:        quotation.StatusPending,
		ValidUntil:    at.Add(quotation.DefaultValidity),
		Items:         items,
	}
}

func item(id string, qty int) models.QuotationItem {
	price := decimal.NewFromInt(100)
	return models.QuotationItem{ProductID: id, ProductName: "Part " + id, Quantity: qty, UnitPrice: price, TotalPrice: price.Mul(decimal.NewFromInt(int64(qty)))}
}

func TestGormRepository_CreateWithItemsNumbers(t *testing.T) {
	repo := quotation.NewGormRepository(dbtest.New(t))
	ctx := context.Background()
	at := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	first := newQuotation(at, item("1", 2))
	require.NoError(t, repo.CreateWithItems(ctx, first))
	require.Equal(t, "QT-2025-0001", first.Number)

	second := newQuotation(at, item("2", 1), item("3", 1))
	require.NoError(t, repo.CreateWithItems(ctx, second))
	require.Equal(t, "QT-2025-0002", second.Number)

	nextYear := newQuotation(at.AddDate(1, 0, 0), item("1", 1))
	require.NoError(t, repo.CreateWithItems(ctx, nextYear))
	require.Equal(t, "QT-2026-0001", nextYear.Number)

	got, err := repo.Get(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.Equal(t, "2", got.Items[0].ProductID)
}

func TestGormRepository_CreateIsAtomic(t *testing.T) {
	db := dbtest.New(t)
	repo := quotation.NewGormRepository(db)
	ctx := context.Background()

	// Without the items table the second insert fails after the header went in.
	require.NoError(t, db.Migrator().DropTable(&models.QuotationItem{}))

	err := repo.CreateWithItems(ctx, newQuotation(time.Now(), item("1", 1)))
	var re *apperr.RemoteOperationError
	require.ErrorAs(t, err, &re)

	var count int64
	require.NoError(t, db.Model(&models.Quotation{}).Count(&count).Error)
	require.Zero(t, count, "header must roll back with its items")
}

func TestGormRepository_UpdateStatus(t *testing.T) {
	db := dbtest.New(t)
	repo := quotation.NewGormRepository(db)
	ctx := context.Background()

	q := newQuotation(time.Now(), item("1", 1))
	require.NoError(t, repo.CreateWithItems(ctx, q))

	updated, from, err := repo.UpdateStatus(ctx, q.ID, quotation.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, quotation.StatusPending, from)
	require.Equal(t, quotation.StatusApproved, updated.Status)

	_, _, err = repo.UpdateStatus(ctx, q.ID, quotation.StatusRejected)
	require.ErrorIs(t, err, quotation.ErrInvalidTransition)

	_, _, err = repo.UpdateStatus(ctx, q.ID, quotation.StatusConverted)
	require.NoError(t, err)

	_, _, err = repo.UpdateStatus(ctx, 9999, quotation.StatusApproved)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	stored, err := repo.Get(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, quotation.StatusConverted, stored.Status)
}

func TestGormRepository_ListAndUpdateDetails(t *testing.T) {
	repo := quotation.NewGormRepository(dbtest.New(t))
	ctx := context.Background()
	uid := uint(3)

	mine := newQuotation(time.Now(), item("1", 1))
	mine.UserID = &uid
	require.NoError(t, repo.CreateWithItems(ctx, mine))
	other := newQuotation(time.Now(), item("2", 1))
	require.NoError(t, repo.CreateWithItems(ctx, other))
	_, _, err := repo.UpdateStatus(ctx, other.ID, quotation.StatusRejected)
	require.NoError(t, err)

	all, err := repo.List(ctx, quotation.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	pending := quotation.StatusPending
	onlyPending, err := repo.List(ctx, quotation.ListFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	require.Equal(t, mine.ID, onlyPending[0].ID)

	own, err := repo.List(ctx, quotation.ListFilter{UserID: &uid})
	require.NoError(t, err)
	require.Len(t, own, 1)

	notes := "call back Monday"
	until := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := repo.UpdateDetails(ctx, mine.ID, &notes, &until)
	require.NoError(t, err)
	require.Equal(t, notes, updated.Notes)
	require.True(t, updated.ValidUntil.Equal(until))
	require.True(t, updated.FinalAmount.Equal(decimal.NewFromInt(210)))

	_, err = repo.UpdateDetails(ctx, 4242, &notes, nil)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_ChangeStatusPublishes(t *testing.T) {
	repo := quotation.NewGormRepository(dbtest.New(t))
	ctx := context.Background()
	q := newQuotation(time.Now(), item("1", 1))
	require.NoError(t, repo.CreateWithItems(ctx, q))

	rec := &events.Recorder{}
	svc := &quotation.Service{Repo: repo, Events: rec}
	_, err := svc.ChangeStatus(ctx, q.ID, quotation.StatusRejected)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, q.ID, quotation.StatusApproved)
	var te *quotation.TransitionError
	require.True(t, errors.As(err, &te))
	require.Equal(t, quotation.StatusRejected, te.From)

	evs := rec.Events()
	require.Len(t, evs, 1)
	changed := evs[0].(events.QuotationStatusChanged)
	require.Equal(t, "pending", changed.From)
	require.Equal(t, "rejected", changed.To)
}
