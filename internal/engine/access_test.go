package engine

import (
	"testing"
	"time"

	"github.com/gamebox/reservation-server/internal/model"
)

var accessNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func shareable(mutate func(*model.Reservation)) *model.Reservation {
	r := &model.Reservation{
		ID:       "r1",
		OwnerID:  10,
		Date:     "2025-03-01",
		SlotTime: "09:00",
		GameMode: "2v2",
		IsPublic: true,
		Status:   model.StatusPending,
		Participants: []model.Participant{
			{Email: "owner@x.io", Confirmed: true},
		},
	}
	if mutate != nil {
		mutate(r)
	}
	return r
}

func TestCanView(t *testing.T) {
	owner := Viewer{Authenticated: true, UserID: 10, Email: "owner@x.io"}
	stranger := Viewer{Authenticated: true, UserID: 99, Email: "someone@x.io"}
	admin := Viewer{Authenticated: true, UserID: 1, Admin: true}
	participant := Viewer{Email: "owner@x.io"}

	tests := []struct {
		name   string
		mutate func(*model.Reservation)
		viewer Viewer
		want   bool
	}{
		{"public visible to anonymous", nil, Viewer{}, true},
		{"private hidden from anonymous", func(r *model.Reservation) { r.IsPublic = false }, Viewer{}, false},
		{"private hidden from stranger", func(r *model.Reservation) { r.IsPublic = false }, stranger, false},
		{"private visible to owner", func(r *model.Reservation) { r.IsPublic = false }, owner, true},
		{"private visible to confirmed participant", func(r *model.Reservation) { r.IsPublic = false }, participant, true},
		{"private hidden from unconfirmed participant", func(r *model.Reservation) {
			r.IsPublic = false
			r.Participants[0].Confirmed = false
		}, participant, false},
		{"private visible to admin", func(r *model.Reservation) { r.IsPublic = false }, admin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanView(shareable(tt.mutate), tt.viewer); got != tt.want {
				t.Errorf("CanView = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanJoin(t *testing.T) {
	policy := testPolicy()
	joiner := Viewer{Email: "new@x.io"}

	tests := []struct {
		name   string
		mutate func(*model.Reservation)
		viewer Viewer
		want   bool
	}{
		{"open public upcoming slot", nil, joiner, true},
		{"private rejects anonymous regardless of capacity", func(r *model.Reservation) { r.IsPublic = false }, Viewer{}, false},
		{"private rejects everyone through the share surface", func(r *model.Reservation) { r.IsPublic = false }, joiner, false},
		{"full reservation", func(r *model.Reservation) {
			r.Participants = append(r.Participants,
				model.Participant{Email: "b@x.io", Confirmed: true},
				model.Participant{Email: "c@x.io", Confirmed: true},
				model.Participant{Email: "d@x.io", Confirmed: true})
		}, joiner, false},
		{"owner cannot join own reservation", nil, Viewer{Authenticated: true, UserID: 10}, false},
		{"confirmed participant cannot rejoin", nil, Viewer{Email: "owner@x.io"}, false},
		{"cancelled reservation", func(r *model.Reservation) { r.Status = model.StatusCancelled }, joiner, false},
		{"finished reservation", func(r *model.Reservation) { r.Status = model.StatusFinished }, joiner, false},
		{"past slot", func(r *model.Reservation) { r.Date = "2025-02-01" }, joiner, false},
		{"confirmed upcoming still joinable", func(r *model.Reservation) { r.Status = model.StatusConfirmed }, joiner, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanJoin(shareable(tt.mutate), tt.viewer, policy, accessNow); got != tt.want {
				t.Errorf("CanJoin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanMutate(t *testing.T) {
	r := shareable(nil)
	if !CanMutate(r, Viewer{Authenticated: true, UserID: 10}) {
		t.Error("owner cannot mutate")
	}
	if !CanMutate(r, Viewer{Admin: true}) {
		t.Error("admin cannot mutate")
	}
	if CanMutate(r, Viewer{Authenticated: true, UserID: 99}) {
		t.Error("stranger can mutate")
	}
	if CanMutate(r, Viewer{Email: "owner@x.io"}) {
		t.Error("participant can mutate")
	}
}
