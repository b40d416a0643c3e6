package engine

import (
	"time"

	"github.com/gamebox/reservation-server/internal/model"
)

// Viewer describes whoever is looking at a reservation: an
// authenticated user, an anonymous share-link holder who supplied an
// email, or an administrator. A zero Viewer is a fully anonymous
// guest.
type Viewer struct {
	Authenticated bool
	UserID        uint64
	Email         string
	Admin         bool
}

// IsOwner reports whether the viewer is the reservation's creator.
// Ownership comes from owner_id only, never from the position of a
// participant entry.
func (v Viewer) IsOwner(r *model.Reservation) bool {
	return v.Authenticated && v.UserID == r.OwnerID
}

// isConfirmedParticipant reports whether the viewer's email matches a
// confirmed entry in the participant list.
func (v Viewer) isConfirmedParticipant(r *model.Reservation) bool {
	if v.Email == "" {
		return false
	}
	for _, p := range r.Participants {
		if p.Email == v.Email && p.Confirmed {
			return true
		}
	}
	return false
}

// CanView reports whether the viewer may read the reservation: public
// reservations are visible to everyone, private ones to the owner,
// confirmed participants and admins.
func CanView(r *model.Reservation, v Viewer) bool {
	if r.IsPublic || v.Admin {
		return true
	}
	if v.IsOwner(r) {
		return true
	}
	return v.isConfirmedParticipant(r)
}

// CanJoin reports whether the viewer may add themselves through the
// share surface. Only public, non-full, upcoming reservations still
// in pending or confirmed accept new joiners; the owner and already
// confirmed participants have nothing to join. Private reservations
// only accept the participants pre-listed at creation time.
func CanJoin(r *model.Reservation, v Viewer, policy *CapacityPolicy, now time.Time) bool {
	if !r.IsPublic {
		return false
	}
	if r.Status != model.StatusPending && r.Status != model.StatusConfirmed {
		return false
	}
	if !IsUpcoming(r, now) {
		return false
	}
	if v.IsOwner(r) || v.isConfirmedParticipant(r) {
		return false
	}
	return !policy.IsFull(r)
}

// CanMutate reports whether the viewer may change the reservation at
// all. Owners may only cancel; admins have full field and status
// control. Finer-grained rules (which fields, which transitions) live
// with the callers.
func CanMutate(r *model.Reservation, v Viewer) bool {
	return v.Admin || v.IsOwner(r)
}
