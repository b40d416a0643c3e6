// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationStatusChanged is published after every successful status
// transition, including creation (OldStatus empty). It carries enough
// context for downstream consumers to log or notify without querying
// the primary database.
type ReservationStatusChanged struct {
	ReservationID string `json:"reservation_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	OwnerID       uint64 `json:"owner_id"`
	Date          string `json:"date"`
	SlotTime      string `json:"slot_time"`
	GameMode      string `json:"game_mode"`
	ChangedAt     string `json:"changed_at"`
}
