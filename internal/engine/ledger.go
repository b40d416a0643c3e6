package engine

import (
	"strings"

	"github.com/gamebox/reservation-server/internal/model"
)

// NormalizeEmail lower-cases and trims an email so participant
// identity comparisons are stable across sources.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ConfirmParticipation records a participant's acceptance. An
// existing entry is marked confirmed in place, so re-confirming is a
// no-op success rather than an error. A new entry is appended only
// while capacity remains; otherwise ErrCapacityExceeded is returned
// and the reservation is unchanged. Terminal reservations never gain
// participants.
func ConfirmParticipation(r *model.Reservation, email, name string, policy *CapacityPolicy) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrNotFound
	}
	for i := range r.Participants {
		if r.Participants[i].Email == email {
			r.Participants[i].Confirmed = true
			if name != "" && r.Participants[i].Name == "" {
				r.Participants[i].Name = name
			}
			return nil
		}
	}
	if IsTerminal(r.Status) {
		return ErrInvalidTransition
	}
	if policy.IsFull(r) {
		return ErrCapacityExceeded
	}
	r.Participants = append(r.Participants, model.Participant{
		Email:     email,
		Name:      name,
		Confirmed: true,
	})
	return nil
}

// SetParticipantConfirmation explicitly sets a participant's
// confirmed flag. It is used by owners managing invitees. An unknown
// email on a non-terminal reservation is inserted, subject to the
// same capacity check as ConfirmParticipation.
func SetParticipantConfirmation(r *model.Reservation, email string, confirmed bool, policy *CapacityPolicy) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrNotFound
	}
	for i := range r.Participants {
		if r.Participants[i].Email == email {
			r.Participants[i].Confirmed = confirmed
			return nil
		}
	}
	if IsTerminal(r.Status) {
		return ErrInvalidTransition
	}
	if policy.IsFull(r) {
		return ErrCapacityExceeded
	}
	r.Participants = append(r.Participants, model.Participant{Email: email, Confirmed: confirmed})
	return nil
}

// ConfirmedCount returns the number of confirmed participants.
func ConfirmedCount(r *model.Reservation) int {
	n := 0
	for _, p := range r.Participants {
		if p.Confirmed {
			n++
		}
	}
	return n
}

// TotalCount returns the number of participant entries.
func TotalCount(r *model.Reservation) int {
	return len(r.Participants)
}
