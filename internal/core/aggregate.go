package core

import (
	"fmt"
	"math"
	"time"
)

// DateRange is an inclusive range of calendar dates, both ends at UTC midnight.
type DateRange struct {
	From time.Time
	To   time.Time
}

// FullRange spans the Unix epoch to the largest representable date.
func FullRange() DateRange {
	return DateRange{
		From: time.Unix(0, 0).UTC(),
		To:   time.Date(275760, time.September, 13, 0, 0, 0, 0, time.UTC),
	}
}

// NewDateRange parses optional YYYY-MM-DD bounds; an empty bound keeps the
// corresponding end of FullRange.
func NewDateRange(from, to string) (DateRange, error) {
	r := FullRange()
	if from != "" {
		d, err := time.Parse(DateLayout, from)
		if err != nil {
			return DateRange{}, ErrInvalidDate
		}
		r.From = d
	}
	if to != "" {
		d, err := time.Parse(DateLayout, to)
		if err != nil {
			return DateRange{}, ErrInvalidDate
		}
		r.To = d
	}
	return r, nil
}

// MonthRange covers every calendar day of the given month.
func MonthRange(year int, month time.Month) DateRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: first, To: first.AddDate(0, 1, -1)}
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, ErrInvalidMonth
	}
	return t.Year(), t.Month(), nil
}

// Contains reports whether the expense date lies within the range.
// Expenses whose date cannot be parsed are never contained.
func (r DateRange) Contains(e Expense) bool {
	d, ok := e.Day()
	if !ok {
		return false
	}
	return !d.Before(r.From) && !d.After(r.To)
}

// FilterExpenses keeps the rows of userID inside r, preserving order.
func FilterExpenses(rows []Expense, userID string, r DateRange) []Expense {
	out := make([]Expense, 0, len(rows))
	for _, e := range rows {
		if e.UserID == userID && r.Contains(e) {
			out = append(out, e)
		}
	}
	return out
}

// Window is a closed interval of instants.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Windows are the day, week (Sunday to Saturday) and month around a reference instant.
type Windows struct {
	Day   Window
	Week  Window
	Month Window
}

// WindowsFor computes the totals windows in the location of ref. Each
// window ends one millisecond before the next one would start.
func WindowsFor(ref time.Time) Windows {
	loc := ref.Location()
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	weekStart := dayStart.AddDate(0, 0, -int(ref.Weekday()))
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	return Windows{
		Day:   Window{Start: dayStart, End: endBefore(dayStart.AddDate(0, 0, 1))},
		Week:  Window{Start: weekStart, End: endBefore(weekStart.AddDate(0, 0, 7))},
		Month: Window{Start: monthStart, End: endBefore(monthStart.AddDate(0, 1, 0))},
	}
}

func endBefore(next time.Time) time.Time {
	return next.Add(-time.Millisecond)
}

// FetchRange is the smallest date range covering every window, so a single
// storage read serves all three sums.
func (w Windows) FetchRange() DateRange {
	start := w.Month.Start
	if w.Week.Start.Before(start) {
		start = w.Week.Start
	}
	end := w.Month.End
	if w.Week.End.After(end) {
		end = w.Week.End
	}
	return DateRange{From: calendarDay(start), To: calendarDay(end)}
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type Totals struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// SumTotals adds each expense amount to every window containing its instant.
func SumTotals(expenses []Expense, w Windows, loc *time.Location) Totals {
	var t Totals
	for _, e := range expenses {
		at, ok := e.At(loc)
		if !ok {
			continue
		}
		if w.Day.Contains(at) {
			t.Daily += e.Amount
		}
		if w.Week.Contains(at) {
			t.Weekly += e.Amount
		}
		if w.Month.Contains(at) {
			t.Monthly += e.Amount
		}
	}
	return t
}

// HourBucket aggregates the expenses recorded during one hour of the day.
type HourBucket struct {
	Hour  int     `json:"hour"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// HourHistogram partitions expenses into 24 buckets by the hour of their
// time. Expenses without a parsable hour are left out.
func HourHistogram(expenses []Expense) []HourBucket {
	buckets := make([]HourBucket, 24)
	for h := range buckets {
		buckets[h] = HourBucket{Hour: h, Label: fmt.Sprintf("%02d:00", h)}
	}
	for _, e := range expenses {
		h, ok := HourOf(e.Time)
		if !ok {
			continue
		}
		buckets[h].Count++
		buckets[h].Total += e.Amount
	}
	return buckets
}

// HourOf returns the integer hour before the first colon of a clock string.
func HourOf(clock string) (int, bool) {
	if clock == "" {
		return 0, false
	}
	head := clock
	for i, r := range clock {
		if r == ':' {
			head = clock[:i]
			break
		}
	}
	h, err := parseLeadingInt(head)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

func parseLeadingInt(s string) (int, error) {
	n, digits := 0, 0
	for _, r := range s {
		if r == ' ' && digits == 0 {
			continue
		}
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if n > math.MaxInt32 {
			return 0, ErrInvalidTime
		}
	}
	if digits == 0 {
		return 0, ErrInvalidTime
	}
	return n, nil
}
