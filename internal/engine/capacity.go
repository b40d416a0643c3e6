package engine

import "github.com/gamebox/reservation-server/internal/model"

// DefaultCapacity is the participant limit applied to game modes
// without an explicit entry in the capacity table.
const DefaultCapacity = 4

// CapacityPolicy resolves the maximum participant count for a game
// mode. Limits come from an explicit mode-to-capacity table (a 1v1
// mode caps at 2, a team mode higher) with a global fallback for
// unknown modes.
type CapacityPolicy struct {
	limits   map[string]int
	fallback int
}

// NewCapacityPolicy builds a policy from the given table and
// fallback. Non-positive table entries are dropped; a non-positive
// fallback is replaced with DefaultCapacity. The table is copied so
// later mutation by the caller has no effect.
func NewCapacityPolicy(limits map[string]int, fallback int) *CapacityPolicy {
	if fallback <= 0 {
		fallback = DefaultCapacity
	}
	own := make(map[string]int, len(limits))
	for mode, max := range limits {
		if max > 0 {
			own[mode] = max
		}
	}
	return &CapacityPolicy{limits: own, fallback: fallback}
}

// MaxParticipantsFor returns the configured participant limit for a
// game mode, or the fallback when the mode is unknown.
func (p *CapacityPolicy) MaxParticipantsFor(gameMode string) int {
	if max, ok := p.limits[gameMode]; ok {
		return max
	}
	return p.fallback
}

// EffectiveMax returns the capacity in force for a reservation: its
// explicit max_participants when set, otherwise the per-mode default.
func (p *CapacityPolicy) EffectiveMax(r *model.Reservation) int {
	if r.MaxParticipants > 0 {
		return r.MaxParticipants
	}
	return p.MaxParticipantsFor(r.GameMode)
}

// IsFull reports whether the participant list has reached the
// effective capacity.
func (p *CapacityPolicy) IsFull(r *model.Reservation) bool {
	return len(r.Participants) >= p.EffectiveMax(r)
}

// ValidateMax checks that a new max_participants value is positive
// and not below the current participant count. It returns
// ErrCapacityViolation when the invariant would break.
func (p *CapacityPolicy) ValidateMax(r *model.Reservation, max int) error {
	if max < 1 || max < len(r.Participants) {
		return ErrCapacityViolation
	}
	return nil
}
