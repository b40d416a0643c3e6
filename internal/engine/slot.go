package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/gamebox/reservation-server/internal/model"
)

// Layouts for the wire form of a slot. All slot comparisons happen in
// UTC at minute granularity.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// NormalizeTime reduces a time-of-day string to its canonical "HH:MM"
// form: zero-padded hour and minute with seconds and timezone
// designators discarded. Two times occupy the same slot iff their
// normalized forms are identical, so this must be applied before
// every time comparison; raw strings from different sources differ in
// padding ("9:00" vs "09:00:00"). The second return value is false
// when the input cannot be read as a time of day.
func NormalizeTime(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	// Cut off seconds and any timezone designator: only the first two
	// colon-separated fields matter.
	if i := strings.IndexAny(s, "+Z "); i >= 0 {
		s = s[:i]
	}
	parts := strings.SplitN(s, ":", 3)
	hour, ok := parseClockField(parts[0], 23)
	if !ok {
		return "", false
	}
	minute := 0
	if len(parts) > 1 {
		minute, ok = parseClockField(parts[1], 59)
		if !ok {
			return "", false
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// parseClockField converts a one- or two-digit clock field and checks
// it against the inclusive maximum.
func parseClockField(s string, max int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 2 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if n > max {
		return 0, false
	}
	return n, true
}

// CombineSlot merges a calendar date and a time of day into a single
// UTC instant. The time is normalized first; an error is returned
// when either part cannot be parsed.
func CombineSlot(date, slotTime string) (time.Time, error) {
	norm, ok := NormalizeTime(slotTime)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid slot time %q", slotTime)
	}
	return time.Parse(DateLayout+" "+TimeLayout, date+" "+norm)
}

// ReservationsForDay returns the reservations whose date exactly
// matches the given calendar date, preserving input order.
func ReservationsForDay(all []model.Reservation, date string) []model.Reservation {
	out := make([]model.Reservation, 0, len(all))
	for _, r := range all {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// ReservationsAtTime returns the reservations occupying the given
// date at the given time of day. Both the argument and each stored
// slot time are normalized before comparison.
func ReservationsAtTime(all []model.Reservation, date, slotTime string) []model.Reservation {
	want, ok := NormalizeTime(slotTime)
	if !ok {
		return nil
	}
	out := make([]model.Reservation, 0, len(all))
	for _, r := range all {
		if r.Date != date {
			continue
		}
		if got, ok := NormalizeTime(r.SlotTime); ok && got == want {
			out = append(out, r)
		}
	}
	return out
}

// IsSlotAvailable reports whether no non-cancelled reservation
// occupies the normalized (date, time) slot. This is a read-only
// query and does not prevent a race between check and booking; the
// unique key on (res_date, slot_time) is the authoritative guard.
func IsSlotAvailable(all []model.Reservation, date, slotTime string) bool {
	for _, r := range ReservationsAtTime(all, date, slotTime) {
		if r.Status != model.StatusCancelled {
			return false
		}
	}
	return true
}

// IsUpcoming reports whether the reservation's slot lies strictly in
// the future and the reservation has not been cancelled. A cancelled
// reservation whose slot has not yet passed is upcoming-but-cancelled
// for display purposes, but it never counts as upcoming here.
func IsUpcoming(r *model.Reservation, now time.Time) bool {
	if r.Status == model.StatusCancelled {
		return false
	}
	at, err := CombineSlot(r.Date, r.SlotTime)
	if err != nil {
		return false
	}
	return at.After(now)
}

// IsPast reports whether the reservation's slot lies strictly in the
// past, independent of status. At the exact instant the slot begins,
// neither IsUpcoming nor IsPast holds.
func IsPast(r *model.Reservation, now time.Time) bool {
	at, err := CombineSlot(r.Date, r.SlotTime)
	if err != nil {
		return false
	}
	return at.Before(now)
}
