// Package workday counts the working days a leave request consumes.
package workday

import (
	"sort"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leavetype"
)

// Set is a set of calendar dates keyed by YYYY-MM-DD.
type Set map[string]struct{}

func Key(t time.Time) string {
	return t.Format(internal.DateLayout)
}

func NewSet(dates ...time.Time) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

func (s Set) Add(t time.Time) {
	s[Key(t)] = struct{}{}
}

func (s Set) Has(t time.Time) bool {
	_, ok := s[Key(t)]
	return ok
}

func (s Set) Merge(other Set) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Sorted returns the members as dates in ascending order.
func (s Set) Sorted() []time.Time {
	out := make([]time.Time, 0, len(s))
	for k := range s {
		if d, err := time.Parse(internal.DateLayout, k); err == nil {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

type Result struct {
	TotalDays  int
	AllInvalid bool
}

// Calculator holds the company floater holiday list. It is safe for
// concurrent use because it is never mutated after construction.
type Calculator struct {
	floater Set
}

func NewCalculator(floaterDates []time.Time) *Calculator {
	return &Calculator{floater: NewSet(floaterDates...)}
}

// Compute walks the inclusive range and counts days that are neither
// weekends nor holidays. For floater leave the floater dates are removed from
// the holiday set and the count is forced to one.
func (c *Calculator) Compute(from, to time.Time, holidays Set, leaveTypeName string) Result {
	floater := leaveTypeName == leavetype.FloaterLeave

	total := 0
	for d := dateOnly(from); !d.After(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}
		if holidays.Has(d) && !(floater && c.floater.Has(d)) {
			continue
		}
		total++
	}

	res := Result{TotalDays: total, AllInvalid: total == 0}
	if floater {
		res.TotalDays = 1
	}
	return res
}

func (c *Calculator) IsFloaterDate(t time.Time) bool {
	return c.floater.Has(t)
}

func (c *Calculator) FloaterDates() []time.Time {
	return c.floater.Sorted()
}

// Years lists every calendar year the range touches.
func Years(from, to time.Time) []int {
	var years []int
	for y := from.Year(); y <= to.Year(); y++ {
		years = append(years, y)
	}
	return years
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
