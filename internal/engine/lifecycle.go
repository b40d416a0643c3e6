package engine

import "github.com/gamebox/reservation-server/internal/model"

// transitions lists the outbound edges of the status state machine.
// Terminal states have no entry. finished and no-show are reachable
// directly from pending: moderators may close out a session whose
// participants never confirmed, so the admin override is deliberately
// not gated on confirmation.
var transitions = map[string]map[string]bool{
	model.StatusPending: {
		model.StatusConfirmed: true,
		model.StatusCancelled: true,
		model.StatusFinished:  true,
		model.StatusNoShow:    true,
	},
	model.StatusConfirmed: {
		model.StatusCancelled: true,
		model.StatusFinished:  true,
		model.StatusNoShow:    true,
	},
}

// ValidStatus reports whether s is one of the five reservation
// statuses.
func ValidStatus(s string) bool {
	switch s {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled,
		model.StatusFinished, model.StatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether a reservation in this status accepts no
// further transitions.
func IsTerminal(status string) bool {
	return status == model.StatusCancelled ||
		status == model.StatusFinished ||
		status == model.StatusNoShow
}

// StatusChange describes one successful transition. It is the payload
// reported to collaborators (the event publisher) after each status
// write; the engine itself owns no side effects.
type StatusChange struct {
	ReservationID string `json:"reservation_id"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// Transition moves the reservation to the given status after checking
// the state machine. Attempts from a terminal state, to an unknown
// status or along a missing edge return ErrInvalidTransition and
// leave the reservation unchanged.
func Transition(r *model.Reservation, to string) (StatusChange, error) {
	if !ValidStatus(to) {
		return StatusChange{}, ErrInvalidTransition
	}
	allowed, ok := transitions[r.Status]
	if !ok || !allowed[to] {
		return StatusChange{}, ErrInvalidTransition
	}
	change := StatusChange{ReservationID: r.ID, From: r.Status, To: to}
	r.Status = to
	return change, nil
}

// AllConfirmed reports whether every participant has confirmed. An
// empty participant list does not count as all-confirmed.
func AllConfirmed(r *model.Reservation) bool {
	if len(r.Participants) == 0 {
		return false
	}
	for _, p := range r.Participants {
		if !p.Confirmed {
			return false
		}
	}
	return true
}

// MaybeConfirm promotes a pending reservation to confirmed once every
// participant has confirmed. It reports whether a transition
// happened.
func MaybeConfirm(r *model.Reservation) (StatusChange, bool) {
	if r.Status != model.StatusPending || !AllConfirmed(r) {
		return StatusChange{}, false
	}
	change, err := Transition(r, model.StatusConfirmed)
	if err != nil {
		return StatusChange{}, false
	}
	return change, true
}
