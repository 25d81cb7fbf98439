package quotation

import (
	"context"
	"log"

	"github.com/diewo77/autoparts/internal/events"
	"github.com/diewo77/autoparts/internal/metrics"
	"github.com/diewo77/autoparts/internal/models"
)

// Service applies admin status changes and announces them.
type Service struct {
	Repo   Repository
	Events events.Publisher
	Logger *log.Logger
}

// ChangeStatus moves quotation id to status to. Illegal moves return a
// *TransitionError; a concurrent change returns a *StaleStatusError.
func (s *Service) ChangeStatus(ctx context.Context, id uint, to Status) (q *models.Quotation, err error) {
	defer func() { metrics.RecordQuotationOperation("transition", err == nil) }()

	q, from, err := s.Repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	if s.Events != nil {
		ev := events.QuotationStatusChanged{QuotationID: q.ID, Number: q.Number, From: string(from), To: string(to)}
		if perr := s.Events.Publish(ctx, ev); perr != nil && s.Logger != nil {
			s.Logger.Printf("publish %s: %v", ev.EventName(), perr)
		}
	}
	if s.Logger != nil {
		s.Logger.Printf("quotation %s: %s -> %s", q.Number, from, to)
	}
	return q, nil
}
