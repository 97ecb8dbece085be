package booking

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// TimeOfDay is a wall-clock time with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" form input.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// minutes is the offset from midnight, used for same-day arithmetic.
func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

// Draft is the transient form state of an in-progress booking: a calendar
// date shared by both clock times, and a derived duration. The duration is
// recomputed whenever either time changes; when the duration is the driving
// field the end time is recomputed instead. It is never edited independently.
type Draft struct {
	SpotID        int
	Date          time.Time // calendar day; clock part is ignored
	Start         TimeOfDay
	End           TimeOfDay
	DurationHours int

	submitting atomic.Bool
}

// NewDraft creates a draft targeting the given spot.
func NewDraft(spotID int) *Draft {
	return &Draft{SpotID: spotID}
}

// SetTimes updates both clock times and re-derives the duration.
func (d *Draft) SetTimes(start, end TimeOfDay) {
	d.Start = start
	d.End = end
	diff := time.Duration(end.minutes()-start.minutes()) * time.Minute
	d.DurationHours = RoundHours(diff)
}

// SetStart updates the start time and re-derives the duration.
func (d *Draft) SetStart(start TimeOfDay) {
	d.SetTimes(start, d.End)
}

// SetEnd updates the end time and re-derives the duration.
func (d *Draft) SetEnd(end TimeOfDay) {
	d.SetTimes(d.Start, end)
}

// SetDuration makes the duration the driving field: the end time is
// re-derived from start plus duration, so the two derivations stay mutually
// inverse.
func (d *Draft) SetDuration(hours int) {
	end := EndFromDuration(time.Date(2000, 1, 1, d.Start.Hour, d.Start.Minute, 0, 0, time.UTC), hours)
	d.End = TimeOfDay{Hour: end.Hour(), Minute: end.Minute()}
	d.DurationHours = hours
}

// Reset clears the form state after a successful submission or cancel.
func (d *Draft) Reset() {
	d.SpotID = 0
	d.Date = time.Time{}
	d.Start = TimeOfDay{}
	d.End = TimeOfDay{}
	d.DurationHours = 0
}

// Submitting reports whether a submission for this draft is in progress.
// The presentation layer disables its submit control while true.
func (d *Draft) Submitting() bool {
	return d.submitting.Load()
}

// BuildRequest combines the draft's calendar date with its clock times in loc,
// validates ordering and the past-start rule against now, and assembles the
// wire payload. It is pure: same draft and now, same payload.
func BuildRequest(d *Draft, now time.Time, loc *time.Location) (*CreateBookingRequest, error) {
	if d.SpotID <= 0 {
		return nil, ErrNoSpot
	}

	start := combine(d.Date, d.Start, loc)
	end := combine(d.Date, d.End, loc)

	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}
	if start.Before(now) {
		return nil, ErrStartInPast
	}

	return &CreateBookingRequest{
		ParkingSpaceID: d.SpotID,
		StartTime:      FormatTimestamp(start),
		EndTime:        FormatTimestamp(end),
		DurationHours:  RoundHours(end.Sub(start)),
	}, nil
}

// combine merges a calendar day with a clock time in the given location.
func combine(date time.Time, t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, loc)
}

// FormatTimestamp is the single serialization point for wire timestamps:
// UTC-normalized ISO 8601, always carrying a timezone marker.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// RoundHours converts a duration to whole hours, rounded to nearest.
func RoundHours(d time.Duration) int {
	return int(math.Round(d.Hours()))
}

// EndFromDuration derives an end timestamp from a start and a whole-hour
// duration. It is the inverse of the RoundHours derivation.
func EndFromDuration(start time.Time, hours int) time.Time {
	return start.Add(time.Duration(hours) * time.Hour)
}
