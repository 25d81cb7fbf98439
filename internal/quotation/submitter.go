package quotation

import (
	"context"
	"log"
	"time"

	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/cart"
	"github.com/diewo77/autoparts/internal/events"
	"github.com/diewo77/autoparts/internal/metrics"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/validation"
)

// DefaultValidity is how long a quotation stays valid.
const DefaultValidity = 30 * 24 * time.Hour

// Submitter turns a cart into a pending quotation. A zero Calc.TaxRate
// produces tax-free quotations.
type Submitter struct {
	Repo     Repository
	Calc     Calculator
	Events   events.Publisher
	Logger   *log.Logger
	Now      func() time.Time
	Validity time.Duration
}

// Submit validates the request, writes the quotation with all its items in
// one transaction and then clears the cart. Validation failures never reach
// the repository; a failed write leaves the cart untouched.
func (s *Submitter) Submit(ctx context.Context, store *cart.Store, details CustomerDetails, userID *uint) (q *models.Quotation, err error) {
	defer func() { metrics.RecordQuotationOperation("submit", err == nil) }()

	lines := store.Items()
	if len(lines) == 0 {
		return nil, apperr.Validation(validation.Violations{"cart": "empty"})
	}
	details = details.Normalize()
	if err := apperr.Validation(details.Validate()); err != nil {
		return nil, err
	}

	now := s.now()
	totals := s.Calc.Compute(lines)
	q = &models.Quotation{
		CreatedAt:       now,
		CustomerName:    details.Name,
		CustomerEmail:   details.Email,
		CustomerPhone:   details.Phone,
		CustomerCompany: details.Company,
		Notes:           details.Notes,
		UserID:          userID,
		Subtotal:        totals.Subtotal,
		TaxRate:         s.Calc.TaxRate,
		TaxAmount:       totals.Tax,
		FinalAmount:     totals.Final,
		Status:          StatusPending,
		ValidUntil:      now.Add(s.validity()),
		Items:           make([]models.QuotationItem, 0, len(lines)),
	}
	for _, l := range lines {
		q.Items = append(q.Items, models.QuotationItem{
			ProductID:   l.ID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  l.LineTotal(),
		})
	}

	if err := s.Repo.CreateWithItems(ctx, q); err != nil {
		return nil, apperr.Remote("create quotation", err)
	}

	// The quotation is committed; a cart that fails to clear is only logged.
	if cerr := store.Clear(); cerr != nil {
		s.logf("quotation %s: clear cart: %v", q.Number, cerr)
	}
	s.publish(ctx, events.QuotationSubmitted{
		QuotationID:   q.ID,
		Number:        q.Number,
		CustomerEmail: q.CustomerEmail,
		UserID:        q.UserID,
		ItemCount:     len(q.Items),
		FinalAmount:   q.FinalAmount,
	})
	s.logf("quotation %s submitted: %d items, total %s", q.Number, len(q.Items), q.FinalAmount.StringFixed(2))
	return q, nil
}

func (s *Submitter) publish(ctx context.Context, ev events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.logf("publish %s: %v", ev.EventName(), err)
	}
}

func (s *Submitter) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Submitter) validity() time.Duration {
	if s.Validity > 0 {
		return s.Validity
	}
	return DefaultValidity
}

func (s *Submitter) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
