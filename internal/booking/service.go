package booking

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cityparkhub/parkctl/internal/cache"
	"github.com/cityparkhub/parkctl/internal/gateway"
	"github.com/cityparkhub/parkctl/internal/pkg/validate"
)

const cacheKeyBookings = "bookings"

// Service orchestrates booking submission and maintenance against the
// backend. A submission runs validation, then at most one create call, then
// cache invalidation; every failure resolves back to an idle draft ready for
// an explicit resubmit.
type Service struct {
	gw      *gateway.Gateway
	cache   *cache.Cache
	log     *logrus.Logger
	localKW string
	loc     *time.Location
	now     func() time.Time
}

func NewService(gw *gateway.Gateway, c *cache.Cache, log *logrus.Logger, localKW string) *Service {
	return &Service{
		gw:      gw,
		cache:   c,
		log:     log,
		localKW: localKW,
		loc:     time.Local,
		now:     time.Now,
	}
}

// Submit runs a single booking attempt for the draft. Validation failures
// never reach the network; the draft is preserved on any failure so the user
// can correct and resubmit, and cleared only on success. Concurrent submits of
// the same draft are rejected (single-flight).
func (s *Service) Submit(ctx context.Context, d *Draft) (*Booking, error) {
	if !d.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer d.submitting.Store(false)

	req, err := BuildRequest(d, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	query := url.Values{"local_kw": {s.localKW}}

	var created Booking
	if err := s.gw.Post(ctx, "/api/bookings", query, req, &created); err != nil {
		return nil, err
	}

	// The list cache is now stale; the next read refetches.
	s.cache.Invalidate(cacheKeyBookings)
	d.Reset()

	s.log.WithFields(logrus.Fields{
		"booking": created.ID,
		"spot":    created.ParkingSpaceID,
	}).Debug("booking created")
	return &created, nil
}

// List returns the caller's bookings, served from the client cache when fresh.
func (s *Service) List(ctx context.Context) ([]Booking, error) {
	if v, ok := s.cache.Get(cacheKeyBookings); ok {
		return v.([]Booking), nil
	}

	bookings, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyBookings, bookings)
	return bookings, nil
}

// Update applies a partial change to a booking's time window. When both ends
// of the window are known the duration is re-derived so the payload stays
// internally consistent.
func (s *Service) Update(ctx context.Context, id int, start, end *time.Time) (*Booking, error) {
	req := UpdateBookingRequest{}
	if start != nil {
		v := FormatTimestamp(*start)
		req.StartTime = &v
	}
	if end != nil {
		v := FormatTimestamp(*end)
		req.EndTime = &v
	}
	if start != nil && end != nil {
		if !end.After(*start) {
			return nil, ErrEndBeforeStart
		}
		hours := RoundHours(end.Sub(*start))
		req.DurationHours = &hours
	}

	var updated Booking
	if err := s.gw.Put(ctx, s.bookingPath(id), req, &updated); err != nil {
		return nil, err
	}
	s.cache.Invalidate(cacheKeyBookings)
	return &updated, nil
}

// Extend pushes a booking's end time out by additionalHours, re-deriving the
// duration from the widened window.
func (s *Service) Extend(ctx context.Context, id int, additionalHours int) (*Booking, error) {
	if additionalHours <= 0 {
		return nil, ErrInvalidHours
	}

	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	newEnd := EndFromDuration(b.EndTime, additionalHours)
	return s.Update(ctx, id, &b.StartTime, &newEnd)
}

// Cancel asks the server to cancel the booking. Status transitions stay
// server-owned; the client only issues the request.
func (s *Service) Cancel(ctx context.Context, id int) error {
	if err := s.gw.Delete(ctx, s.bookingPath(id)); err != nil {
		return err
	}
	s.cache.Invalidate(cacheKeyBookings)
	return nil
}

// fetch reads the booking list from the backend, bypassing the cache.
func (s *Service) fetch(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := s.gw.Get(ctx, "/api/bookings", nil, &bookings, gateway.WithRetry()); err != nil {
		return nil, err
	}
	return bookings, nil
}

// find locates one booking by id in a fresh list fetch. The backend exposes
// no single-booking read.
func (s *Service) find(ctx context.Context, id int) (*Booking, error) {
	bookings, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *Service) bookingPath(id int) string {
	return fmt.Sprintf("/api/bookings/%d", id)
}
