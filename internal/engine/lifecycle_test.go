package engine

import (
	"errors"
	"testing"

	"github.com/gamebox/reservation-server/internal/model"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		wantErr bool
	}{
		{model.StatusPending, model.StatusConfirmed, false},
		{model.StatusPending, model.StatusCancelled, false},
		{model.StatusPending, model.StatusFinished, false},
		{model.StatusPending, model.StatusNoShow, false},
		{model.StatusConfirmed, model.StatusCancelled, false},
		{model.StatusConfirmed, model.StatusFinished, false},
		{model.StatusConfirmed, model.StatusNoShow, false},
		// No backward or self edges.
		{model.StatusConfirmed, model.StatusPending, true},
		{model.StatusPending, model.StatusPending, true},
		// Terminal states accept nothing.
		{model.StatusCancelled, model.StatusPending, true},
		{model.StatusCancelled, model.StatusConfirmed, true},
		{model.StatusFinished, model.StatusCancelled, true},
		{model.StatusNoShow, model.StatusConfirmed, true},
		// Unknown targets are rejected.
		{model.StatusPending, "archived", true},
		{model.StatusPending, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			r := model.Reservation{ID: "r1", Status: tt.from}
			change, err := Transition(&r, tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Transition err = %v, want ErrInvalidTransition", err)
				}
				if r.Status != tt.from {
					t.Errorf("failed transition mutated status to %q", r.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition: %v", err)
			}
			if r.Status != tt.to {
				t.Errorf("status = %q, want %q", r.Status, tt.to)
			}
			want := StatusChange{ReservationID: "r1", From: tt.from, To: tt.to}
			if change != want {
				t.Errorf("change = %+v, want %+v", change, want)
			}
		})
	}
}

func TestTerminalStatesNeverLeave(t *testing.T) {
	all := []string{model.StatusPending, model.StatusConfirmed, model.StatusCancelled,
		model.StatusFinished, model.StatusNoShow}
	for _, from := range []string{model.StatusCancelled, model.StatusFinished, model.StatusNoShow} {
		for _, to := range all {
			r := model.Reservation{Status: from}
			if _, err := Transition(&r, to); err == nil {
				t.Errorf("transition %s -> %s was allowed", from, to)
			}
			if r.Status != from {
				t.Errorf("status left %s for %s", from, r.Status)
			}
		}
	}
}

func TestAllConfirmed(t *testing.T) {
	tests := []struct {
		name string
		ps   []model.Participant
		want bool
	}{
		{"empty list", nil, false},
		{"all confirmed", []model.Participant{{Email: "a@x.io", Confirmed: true}, {Email: "b@x.io", Confirmed: true}}, true},
		{"one unconfirmed", []model.Participant{{Email: "a@x.io", Confirmed: true}, {Email: "b@x.io"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := model.Reservation{Participants: tt.ps}
			if got := AllConfirmed(&r); got != tt.want {
				t.Errorf("AllConfirmed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaybeConfirm(t *testing.T) {
	confirmed := []model.Participant{{Email: "a@x.io", Confirmed: true}}

	r := model.Reservation{ID: "r1", Status: model.StatusPending, Participants: confirmed}
	change, ok := MaybeConfirm(&r)
	if !ok || r.Status != model.StatusConfirmed {
		t.Fatalf("MaybeConfirm ok=%v status=%q", ok, r.Status)
	}
	if change.From != model.StatusPending || change.To != model.StatusConfirmed {
		t.Errorf("change = %+v", change)
	}

	// Already confirmed: nothing to do.
	if _, ok := MaybeConfirm(&r); ok {
		t.Error("MaybeConfirm fired on a confirmed reservation")
	}

	// Unconfirmed participant keeps it pending.
	r2 := model.Reservation{Status: model.StatusPending, Participants: []model.Participant{{Email: "a@x.io"}}}
	if _, ok := MaybeConfirm(&r2); ok || r2.Status != model.StatusPending {
		t.Errorf("MaybeConfirm fired with unconfirmed participants, status=%q", r2.Status)
	}
}
