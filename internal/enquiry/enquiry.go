// Package enquiry books parts enquiries against a daily delivery capacity.
package enquiry

import (
	"context"
	"log"
	"time"

	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/events"
	"github.com/diewo77/autoparts/internal/metrics"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	DeliveryWindows = []string{"09:00 - 11:00", "11:00 - 13:00", "13:00 - 15:00", "15:00 - 17:00", "17:00 - 19:00"}
	CarModels       = []string{"BMW", "Mercedes-Benz", "Audi", "Volkswagen", "Other"}
	ProductTypes    = []string{
		"Engine Parts", "Brake System", "Transmission", "Suspension",
		"Electrical Components", "Cooling System", "Exhaust System", "Other",
	}
)

const (
	DefaultDailyCapacity = 5
	defaultNextAvailable = 3
	// searchHorizon bounds the scan for free days.
	searchHorizon = 90
	CodeBooked    = "booked"
	CodeNotFuture = "not_future"
)

// Request is a submitted enquiry form.
type Request struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CarModel       string `json:"car_model"`
	ProductType    string `json:"product_type"`
	Description    string `json:"description"`
	DeliveryDate   string `json:"delivery_date"`
	DeliveryWindow string `json:"delivery_window"`
}

type Service struct {
	DB            *gorm.DB
	DailyCapacity int
	Events        events.Publisher
	Logger        *log.Logger
	Now           func() time.Time
}

// Availability is what the booking form needs to render.
type Availability struct {
	Booked          []string `json:"booked"`
	NextAvailable   []string `json:"next_available"`
	DeliveryWindows []string `json:"delivery_windows"`
	CarModels       []string `json:"car_models"`
	ProductTypes    []string `json:"product_types"`
}

const dayLayout = "2006-01-02"

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BookedDates returns the days in [from, to] whose enquiry count has reached capacity.
func (s *Service) BookedDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	counts, err := s.counts(ctx, day(from), day(to).AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	var out []time.Time
	for d := day(from); !d.After(day(to)); d = d.AddDate(0, 0, 1) {
		if counts[d.Format(dayLayout)] >= s.capacity() {
			out = append(out, d)
		}
	}
	return out, nil
}

// NextAvailable lists up to n free days starting tomorrow; n <= 0 means 3.
func (s *Service) NextAvailable(ctx context.Context, n int) ([]time.Time, error) {
	if n <= 0 {
		n = defaultNextAvailable
	}
	start := day(s.now()).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, searchHorizon)
	counts, err := s.counts(ctx, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, n)
	for d := start; d.Before(end) && len(out) < n; d = d.AddDate(0, 0, 1) {
		if counts[d.Format(dayLayout)] < s.capacity() {
			out = append(out, d)
		}
	}
	return out, nil
}

// counts tallies enquiries per day in [from, to). Grouping happens here
// rather than in SQL so the date truncation works the same on every driver.
func (s *Service) counts(ctx context.Context, from, to time.Time) (map[string]int, error) {
	var dates []time.Time
	err := s.DB.WithContext(ctx).Model(&models.Enquiry{}).
		Where("delivery_date >= ? AND delivery_date < ?", from, to).
		Pluck("delivery_date", &dates).Error
	if err != nil {
		return nil, apperr.Remote("count enquiries", err)
	}
	out := make(map[string]int, len(dates))
	for _, d := range dates {
		out[d.UTC().Format(dayLayout)]++
	}
	return out, nil
}

func (s *Service) Availability(ctx context.Context) (Availability, error) {
	tomorrow := day(s.now()).AddDate(0, 0, 1)
	booked, err := s.BookedDates(ctx, tomorrow, tomorrow.AddDate(0, 0, searchHorizon))
	if err != nil {
		return Availability{}, err
	}
	next, err := s.NextAvailable(ctx, defaultNextAvailable)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		Booked:          formatDays(booked),
		NextAvailable:   formatDays(next),
		DeliveryWindows: DeliveryWindows,
		CarModels:       CarModels,
		ProductTypes:    ProductTypes,
	}, nil
}

// Submit validates req, checks the day still has capacity and stores it.
func (s *Service) Submit(ctx context.Context, req Request) (e *models.Enquiry, err error) {
	defer func() { metrics.RecordEnquiryOperation("submit", err == nil) }()

	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.MinLength("name", req.Name, 2, v)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.Required("phone", req.Phone, v)
	validation.MinLength("phone", req.Phone, 10, v)
	validation.Required("car_model", req.CarModel, v)
	validation.OneOf("car_model", req.CarModel, CarModels, v)
	validation.Required("product_type", req.ProductType, v)
	validation.OneOf("product_type", req.ProductType, ProductTypes, v)
	validation.Required("delivery_window", req.DeliveryWindow, v)
	validation.OneOf("delivery_window", req.DeliveryWindow, DeliveryWindows, v)
	validation.Required("delivery_date", req.DeliveryDate, v)
	date := validation.Date("delivery_date", req.DeliveryDate, v)
	if !v.Has("delivery_date") && !day(date).After(day(s.now())) {
		v.Add("delivery_date", CodeNotFuture)
	}
	if err := apperr.Validation(v); err != nil {
		return nil, err
	}
	date = day(date)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reserve(tx, date); err != nil {
			return err
		}
		e = &models.Enquiry{
			Name:           req.Name,
			Email:          req.Email,
			Phone:          req.Phone,
			CarModel:       req.CarModel,
			ProductType:    req.ProductType,
			Description:    req.Description,
			DeliveryDate:   date,
			DeliveryWindow: req.DeliveryWindow,
		}
		return tx.Create(e).Error
	})
	if err != nil {
		return nil, apperr.Remote("create enquiry", err)
	}

	if s.Events != nil {
		ev := events.EnquirySubmitted{EnquiryID: e.ID, CarModel: e.CarModel, ProductType: e.ProductType, DeliveryDate: e.DeliveryDate, DeliveryWindow: e.DeliveryWindow}
		if perr := s.Events.Publish(ctx, ev); perr != nil {
			s.logf("publish %s: %v", ev.EventName(), perr)
		}
	}
	s.logf("enquiry %d booked for %s %s", e.ID, e.DeliveryDate.Format(dayLayout), e.DeliveryWindow)
	return e, nil
}

// reserve takes one slot of date's capacity. The increment only matches
// while the day is below capacity, and concurrent bookings of the same day
// queue on its row until the holder commits.
func (s *Service) reserve(tx *gorm.DB, date time.Time) error {
	var existing int64
	if err := tx.Model(&models.Enquiry{}).
		Where("delivery_date >= ? AND delivery_date < ?", date, date.AddDate(0, 0, 1)).
		Count(&existing).Error; err != nil {
		return err
	}
	// Seeds the counter from enquiries stored before it existed; a racing
	// insert of the same day wins and this one is skipped.
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.EnquiryDay{DeliveryDate: date, Booked: int(existing)}).Error; err != nil {
		return err
	}
	res := tx.Model(&models.EnquiryDay{}).
		Where("delivery_date = ? AND booked < ?", date, s.capacity()).
		Update("booked", gorm.Expr("booked + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Validation(validation.Violations{"delivery_date": CodeBooked})
	}
	return nil
}

// List returns enquiries by delivery date, soonest first.
func (s *Service) List(ctx context.Context) ([]models.Enquiry, error) {
	var out []models.Enquiry
	if err := s.DB.WithContext(ctx).Order("delivery_date, id").Find(&out).Error; err != nil {
		return nil, apperr.Remote("list enquiries", err)
	}
	return out, nil
}

func (s *Service) capacity() int {
	if s.DailyCapacity > 0 {
		return s.DailyCapacity
	}
	return DefaultDailyCapacity
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func formatDays(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(dayLayout))
	}
	return out
}
