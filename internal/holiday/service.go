package holiday

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/workday"
	"golang.org/x/sync/singleflight"
)

// Provider is the external calendar the service caches in front of.
type Provider interface {
	HolidaysForYear(ctx context.Context, year int) ([]Holiday, error)
}

type FloaterHoliday struct {
	Date string `json:"date"`
	Day  string `json:"day"`
}

type cachedYear struct {
	holidays  []Holiday
	fetchedAt time.Time
}

type Service struct {
	provider Provider
	calc     *workday.Calculator
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.RWMutex
	years map[int]cachedYear
	group singleflight.Group
}

func NewService(provider Provider, calc *workday.Calculator, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		provider: provider,
		calc:     calc,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		years:    make(map[int]cachedYear),
	}
}

// HolidaysForYear serves from cache while fresh. Concurrent misses for the
// same year share one upstream call.
func (s *Service) HolidaysForYear(ctx context.Context, year int) ([]Holiday, error) {
	s.mu.RLock()
	entry, ok := s.years[year]
	s.mu.RUnlock()
	if ok && s.now().Sub(entry.fetchedAt) < s.ttl {
		return entry.holidays, nil
	}

	v, err, _ := s.group.Do(strconv.Itoa(year), func() (interface{}, error) {
		s.mu.RLock()
		fresh, hit := s.years[year]
		s.mu.RUnlock()
		if hit && s.now().Sub(fresh.fetchedAt) < s.ttl {
			return fresh.holidays, nil
		}

		holidays, err := s.provider.HolidaysForYear(ctx, year)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.years[year] = cachedYear{holidays: holidays, fetchedAt: s.now()}
		s.mu.Unlock()
		return holidays, nil
	})
	if err != nil {
		if ok {
			s.logger.Warn("holiday refresh failed, serving stale entry", "year", year, "error", err)
			return entry.holidays, nil
		}
		return nil, fmt.Errorf("fetch holidays for %d: %w", year, err)
	}
	return v.([]Holiday), nil
}

// HolidaysBetween returns the public holidays of every year the range
// touches. A provider outage degrades to an empty set for that year so
// submission falls back to weekends-only counting.
func (s *Service) HolidaysBetween(ctx context.Context, from, to time.Time) (workday.Set, error) {
	set := workday.Set{}
	for _, year := range workday.Years(from, to) {
		holidays, err := s.HolidaysForYear(ctx, year)
		if err != nil {
			s.logger.Warn("holiday calendar unavailable, counting weekends only", "year", year, "error", err)
			continue
		}
		for _, h := range holidays {
			if d, err := time.Parse(internal.DateLayout, h.Date); err == nil {
				set.Add(d)
			}
		}
	}
	return set, nil
}

// PublicHolidays is the strict variant used by the listing endpoint.
func (s *Service) PublicHolidays(ctx context.Context, year int) ([]Holiday, error) {
	holidays, err := s.HolidaysForYear(ctx, year)
	if err != nil {
		s.logger.Error("failed to fetch public holidays", "year", year, "error", err)
		return nil, internal.ErrHolidayProviderFailure.WithMessage(fmt.Sprintf("Failed to fetch public holidays for %d", year)).WithCause(err)
	}
	return holidays, nil
}

func (s *Service) FloaterHolidays() []FloaterHoliday {
	dates := s.calc.FloaterDates()
	out := make([]FloaterHoliday, 0, len(dates))
	for _, d := range dates {
		out = append(out, FloaterHoliday{Date: workday.Key(d), Day: d.Weekday().String()})
	}
	return out
}
