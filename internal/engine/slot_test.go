package engine

import (
	"testing"
	"time"

	"github.com/gamebox/reservation-server/internal/model"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"09:00", "09:00", true},
		{"9:00", "09:00", true},
		{"9:0", "09:00", true},
		{"9", "09:00", true},
		{"09:00:00", "09:00", true},
		{"9:05:59", "09:05", true},
		{"23:59", "23:59", true},
		{"0:0", "00:00", true},
		{" 14:30 ", "14:30", true},
		{"09:00:00+02:00", "09:00", true},
		{"09:00Z", "09:00", true},
		{"", "", false},
		{"24:00", "", false},
		{"12:60", "", false},
		{"ab:cd", "", false},
		{"123:00", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeTime(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("NormalizeTime(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeTimeEquivalence(t *testing.T) {
	// Differently padded renderings of the same time of day must
	// normalize identically.
	pairs := [][2]string{
		{"9:0", "09:00"},
		{"9:00", "09:00:00"},
		{"09:5", "9:05:30"},
	}
	for _, p := range pairs {
		a, okA := NormalizeTime(p[0])
		b, okB := NormalizeTime(p[1])
		if !okA || !okB || a != b {
			t.Errorf("NormalizeTime(%q)=%q, NormalizeTime(%q)=%q; want equal", p[0], a, p[1], b)
		}
	}
}

func TestCombineSlot(t *testing.T) {
	got, err := CombineSlot("2025-03-01", "9:0")
	if err != nil {
		t.Fatalf("CombineSlot: %v", err)
	}
	want := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CombineSlot = %v, want %v", got, want)
	}
	if _, err := CombineSlot("2025-03-01", "25:00"); err == nil {
		t.Error("CombineSlot accepted an invalid time")
	}
	if _, err := CombineSlot("not-a-date", "09:00"); err == nil {
		t.Error("CombineSlot accepted an invalid date")
	}
}

func slotPool() []model.Reservation {
	return []model.Reservation{
		{ID: "a", Date: "2025-03-01", SlotTime: "09:00", Status: model.StatusPending},
		{ID: "b", Date: "2025-03-01", SlotTime: "10:00", Status: model.StatusCancelled},
		{ID: "c", Date: "2025-03-02", SlotTime: "09:00", Status: model.StatusConfirmed},
	}
}

func TestReservationsForDay(t *testing.T) {
	got := ReservationsForDay(slotPool(), "2025-03-01")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("ReservationsForDay returned %v", got)
	}
	if got := ReservationsForDay(slotPool(), "2025-04-01"); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestReservationsAtTime(t *testing.T) {
	// "9:00:00" must hit the stored "09:00" slot via normalization.
	got := ReservationsAtTime(slotPool(), "2025-03-01", "9:00:00")
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("ReservationsAtTime returned %v", got)
	}
}

func TestIsSlotAvailable(t *testing.T) {
	pool := slotPool()
	tests := []struct {
		name string
		date string
		at   string
		want bool
	}{
		{"occupied pending slot", "2025-03-01", "9:00", false},
		{"cancelled reservations free the slot", "2025-03-01", "10:00", true},
		{"free slot", "2025-03-01", "11:00", true},
		{"occupied on another day", "2025-03-02", "09:00:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSlotAvailable(pool, tt.date, tt.at); got != tt.want {
				t.Errorf("IsSlotAvailable(%s %s) = %v, want %v", tt.date, tt.at, got, tt.want)
			}
		})
	}
}

func TestUpcomingPast(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name         string
		r            model.Reservation
		wantUpcoming bool
		wantPast     bool
	}{
		{
			name:         "future slot",
			r:            model.Reservation{Date: "2025-03-01", SlotTime: "09:01", Status: model.StatusPending},
			wantUpcoming: true,
			wantPast:     false,
		},
		{
			name:         "past slot",
			r:            model.Reservation{Date: "2025-03-01", SlotTime: "08:59", Status: model.StatusPending},
			wantUpcoming: false,
			wantPast:     true,
		},
		{
			name: "exactly now is neither",
			r:    model.Reservation{Date: "2025-03-01", SlotTime: "09:00", Status: model.StatusPending},
		},
		{
			name:     "cancelled future slot is not upcoming and not past",
			r:        model.Reservation{Date: "2025-03-01", SlotTime: "10:00", Status: model.StatusCancelled},
			wantPast: false,
		},
		{
			name:         "finished past slot is past",
			r:            model.Reservation{Date: "2025-02-28", SlotTime: "09:00", Status: model.StatusFinished},
			wantUpcoming: false,
			wantPast:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUpcoming(&tt.r, now); got != tt.wantUpcoming {
				t.Errorf("IsUpcoming = %v, want %v", got, tt.wantUpcoming)
			}
			if got := IsPast(&tt.r, now); got != tt.wantPast {
				t.Errorf("IsPast = %v, want %v", got, tt.wantPast)
			}
		})
	}
}

func TestUpcomingXorPast(t *testing.T) {
	// For a non-cancelled reservation, exactly one of upcoming/past
	// holds except at the instant the slot begins, when both are
	// false.
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, at := range []string{"11:59", "12:00", "12:01"} {
		r := model.Reservation{Date: "2025-03-01", SlotTime: at, Status: model.StatusConfirmed}
		up, past := IsUpcoming(&r, now), IsPast(&r, now)
		if up && past {
			t.Errorf("slot %s: both upcoming and past", at)
		}
		if at != "12:00" && up == past {
			t.Errorf("slot %s: upcoming=%v past=%v, want exactly one", at, up, past)
		}
		if at == "12:00" && (up || past) {
			t.Errorf("slot %s: tie case should be neither, got upcoming=%v past=%v", at, up, past)
		}
	}
}
