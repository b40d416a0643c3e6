package engine

import (
	"errors"
	"testing"

	"github.com/gamebox/reservation-server/internal/model"
)

func TestConfirmParticipationFillsOneVOne(t *testing.T) {
	// One-on-one mode caps at two: one confirmed entry leaves room,
	// the second fills it, a third attempt is rejected.
	policy := testPolicy()
	r := model.Reservation{
		ID:       "r1",
		Date:     "2025-03-01",
		SlotTime: "09:00",
		GameMode: "1v1",
		Status:   model.StatusPending,
		Participants: []model.Participant{
			{Email: "first@x.io", Confirmed: true},
		},
	}
	if policy.IsFull(&r) {
		t.Fatal("reservation full after one of two participants")
	}
	if err := ConfirmParticipation(&r, "second@x.io", "", policy); err != nil {
		t.Fatalf("second confirmation: %v", err)
	}
	if !policy.IsFull(&r) {
		t.Fatal("reservation not full at capacity")
	}
	err := ConfirmParticipation(&r, "third@x.io", "", policy)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("third confirmation err = %v, want ErrCapacityExceeded", err)
	}
	if TotalCount(&r) != 2 {
		t.Errorf("participant count = %d after rejected confirm, want 2", TotalCount(&r))
	}
}

func TestConfirmParticipationIdempotent(t *testing.T) {
	policy := testPolicy()
	r := model.Reservation{
		GameMode: "1v1",
		Status:   model.StatusPending,
		Participants: []model.Participant{
			{Email: "a@x.io", Confirmed: true},
			{Email: "b@x.io", Confirmed: true},
		},
	}
	before := append([]model.Participant(nil), r.Participants...)

	// Re-confirming succeeds even though the reservation is full.
	if err := ConfirmParticipation(&r, "a@x.io", "", policy); err != nil {
		t.Fatalf("re-confirmation: %v", err)
	}
	if len(r.Participants) != len(before) {
		t.Fatalf("participant list grew on re-confirmation")
	}
	for i := range before {
		if r.Participants[i] != before[i] {
			t.Errorf("participant %d changed: %+v -> %+v", i, before[i], r.Participants[i])
		}
	}
}

func TestConfirmParticipationNormalizesEmail(t *testing.T) {
	policy := testPolicy()
	r := model.Reservation{GameMode: "2v2", Status: model.StatusPending}
	if err := ConfirmParticipation(&r, "  Player@X.IO ", "Player", policy); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if r.Participants[0].Email != "player@x.io" {
		t.Errorf("email not normalized: %q", r.Participants[0].Email)
	}
	// The padded spelling resolves to the same entry.
	if err := ConfirmParticipation(&r, "PLAYER@x.io", "", policy); err != nil {
		t.Fatalf("re-confirm with different case: %v", err)
	}
	if TotalCount(&r) != 1 {
		t.Errorf("duplicate entry created: %d participants", TotalCount(&r))
	}
}

func TestConfirmParticipationTerminal(t *testing.T) {
	policy := testPolicy()
	for _, status := range []string{model.StatusCancelled, model.StatusFinished, model.StatusNoShow} {
		r := model.Reservation{GameMode: "2v2", Status: status}
		err := ConfirmParticipation(&r, "late@x.io", "", policy)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("status %s: err = %v, want ErrInvalidTransition", status, err)
		}
		if TotalCount(&r) != 0 {
			t.Errorf("status %s: terminal reservation gained a participant", status)
		}
	}
}

func TestConfirmParticipationEmptyEmail(t *testing.T) {
	r := model.Reservation{GameMode: "2v2", Status: model.StatusPending}
	if err := ConfirmParticipation(&r, "   ", "", testPolicy()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSetParticipantConfirmation(t *testing.T) {
	policy := testPolicy()
	r := model.Reservation{
		GameMode: "2v2",
		Status:   model.StatusPending,
		Participants: []model.Participant{
			{Email: "a@x.io", Confirmed: true},
		},
	}
	if err := SetParticipantConfirmation(&r, "a@x.io", false, policy); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if r.Participants[0].Confirmed {
		t.Error("decline not recorded")
	}
	// Unknown email is inserted while capacity remains.
	if err := SetParticipantConfirmation(&r, "b@x.io", true, policy); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if TotalCount(&r) != 2 || !r.Participants[1].Confirmed {
		t.Errorf("insert path wrong: %+v", r.Participants)
	}
}

func TestCounts(t *testing.T) {
	r := model.Reservation{Participants: []model.Participant{
		{Email: "a@x.io", Confirmed: true},
		{Email: "b@x.io"},
		{Email: "c@x.io", Confirmed: true},
	}}
	if got := ConfirmedCount(&r); got != 2 {
		t.Errorf("ConfirmedCount = %d, want 2", got)
	}
	if got := TotalCount(&r); got != 3 {
		t.Errorf("TotalCount = %d, want 3", got)
	}
}
