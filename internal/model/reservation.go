package model

import "time"

// Reservation statuses. A reservation is created as pending and only
// moves forward: cancelled, finished and no-show are terminal and no
// other value is ever stored or returned.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusFinished  = "finished"
	StatusNoShow    = "no-show"
)

// Difficulty levels. Informational only; no rule depends on them.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Reservation is the aggregate root for a booked slot. It records who
// booked which (date, time) slot for which game mode, who was invited
// or joined, and where the booking sits in its lifecycle.
//
// Fields:
//  ID              – opaque UUID generated at creation, immutable.
//  OwnerID         – user who created the reservation; the sole
//                    authorization source for owner checks.
//  Date            – calendar date in "2006-01-02" form.
//  SlotTime        – normalized time of day "HH:MM"; together with
//                    Date it identifies the occupied slot.
//  GameMode        – activity identifier; drives the capacity limit.
//  Level           – difficulty classifier, one of the Level* values.
//  IsPublic        – whether non-participants may view and join via
//                    the share link.
//  MaxParticipants – explicit capacity; 0 means "use the per-mode
//                    default from the capacity policy".
//  Participants    – insertion-ordered invitees and joiners. By
//                    convention the owner's own entry is inserted
//                    first, but that is a display convenience only.
//  Status          – lifecycle state, one of the Status* constants.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              string        `json:"id"`              // reservations.id
	OwnerID         uint64        `json:"owner_id"`        // reservations.owner_id
	Date            string        `json:"date"`            // reservations.res_date
	SlotTime        string        `json:"slot_time"`       // reservations.slot_time
	GameMode        string        `json:"game_mode"`       // reservations.game_mode
	Level           string        `json:"level,omitempty"` // reservations.level
	IsPublic        bool          `json:"is_public"`       // reservations.is_public
	MaxParticipants int           `json:"max_participants"`
	Participants    []Participant `json:"participants"`
	Status          string        `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Participant is an invitee or joiner of a single reservation. It has
// no identity outside the reservation that owns it; the email is
// unique within one reservation's participant list.
//
// Fields:
//  Email     – identifies the participant (stored lower-cased and
//              trimmed).
//  Name      – optional display label.
//  Confirmed – the participant's explicit acceptance.
type Participant struct {
	Email     string `json:"email"`          // participants.email
	Name      string `json:"name,omitempty"` // participants.name
	Confirmed bool   `json:"confirmed"`      // participants.confirmed
}

// HasParticipant reports whether the given email is present in the
// participant list. The email must already be normalized by the
// caller.
func (r *Reservation) HasParticipant(email string) bool {
	for _, p := range r.Participants {
		if p.Email == email {
			return true
		}
	}
	return false
}
