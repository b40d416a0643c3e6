package handler

// This file defines the booking surface: creating a reservation,
// listing the caller's reservations, checking slot availability and
// editing or cancelling an existing reservation. Authorization is
// resolved per request from the engine's access rules; the repository
// re-validates the racy invariants (slot uniqueness, capacity) at
// write time.

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gamebox/reservation-server/internal/engine"
	"github.com/gamebox/reservation-server/internal/model"
	"github.com/gamebox/reservation-server/internal/queue"
	"github.com/gamebox/reservation-server/internal/repository"
	"github.com/gamebox/reservation-server/internal/service"
)

// ReservationHandler groups the dependencies of the booking
// endpoints.
type ReservationHandler struct {
	Repo   *repository.ReservationRepo
	Policy *engine.CapacityPolicy
}

// NewReservationHandler constructs a ReservationHandler. Both
// dependencies must be non-nil.
func NewReservationHandler(repo *repository.ReservationRepo, policy *engine.CapacityPolicy) *ReservationHandler {
	if repo == nil || policy == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Repo: repo, Policy: policy}
}

type participantReq struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type createReservationReq struct {
	Date            string           `json:"date"`
	SlotTime        string           `json:"slot_time"`
	GameMode        string           `json:"game_mode"`
	Level           string           `json:"level"`
	IsPublic        *bool            `json:"is_public"`
	MaxParticipants int              `json:"max_participants"`
	Participants    []participantReq `json:"participants"`
}

// Create handles POST /v1/reservations. The owner's own participant
// entry is inserted first (confirmed), followed by the pre-listed
// invitees (unconfirmed), all within the capacity for the game mode.
// The slot is pre-checked for a friendly error, but the unique key on
// (res_date, slot_time) is what actually decides a race: losing it
// returns 409 slot_conflict and the caller retries with another slot.
func (h *ReservationHandler) Create(c echo.Context) error {
	viewer := viewerFrom(c)
	if !viewer.Authenticated {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if _, err := time.Parse(engine.DateLayout, req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	slotTime, ok := engine.NormalizeTime(req.SlotTime)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot_time"})
	}
	if req.GameMode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "game_mode is required"})
	}
	if req.Level != "" && req.Level != model.LevelBeginner &&
		req.Level != model.LevelIntermediate && req.Level != model.LevelAdvanced {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid level"})
	}
	if req.MaxParticipants < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_participants"})
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	res := model.Reservation{
		ID:              uuid.NewString(),
		OwnerID:         viewer.UserID,
		Date:            req.Date,
		SlotTime:        slotTime,
		GameMode:        req.GameMode,
		Level:           req.Level,
		IsPublic:        isPublic,
		MaxParticipants: req.MaxParticipants,
		Status:          model.StatusPending,
		Participants: []model.Participant{
			{Email: viewer.Email, Confirmed: true},
		},
	}
	// Pre-listed invitees go through the ledger so duplicates collapse
	// and the capacity limit applies from the start.
	for _, p := range req.Participants {
		if engine.NormalizeEmail(p.Email) == viewer.Email {
			continue
		}
		if err := engine.SetParticipantConfirmation(&res, p.Email, false, h.Policy); err != nil {
			return engineError(c, err)
		}
	}

	ctx := c.Request().Context()
	// Friendly pre-check; not authoritative (see the unique key).
	day, err := h.Repo.ListByDay(ctx, res.Date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !engine.IsSlotAvailable(day, res.Date, res.SlotTime) {
		return engineError(c, engine.ErrSlotConflict)
	}

	if err := h.Repo.Create(ctx, &res); err != nil {
		return engineError(c, err)
	}
	service.PublishStatusChanged(ctx, statusEvent(&res, engine.StatusChange{
		ReservationID: res.ID,
		To:            model.StatusPending,
	}))
	return c.JSON(http.StatusCreated, res)
}

// List handles GET /v1/reservations. It returns the reservations the
// caller owns or participates in.
func (h *ReservationHandler) List(c echo.Context) error {
	viewer := viewerFrom(c)
	if !viewer.Authenticated {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Repo.ListForUser(c.Request().Context(), viewer.UserID, viewer.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"count": len(items),
	})
}

// CheckAvailability handles GET /v1/reservations/availability/check.
// It reports whether the normalized (date, time) slot is free of
// non-cancelled reservations. Read-only; booking may still lose the
// race afterwards.
func (h *ReservationHandler) CheckAvailability(c echo.Context) error {
	date := c.QueryParam("date")
	if _, err := time.Parse(engine.DateLayout, date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	slotTime, ok := engine.NormalizeTime(c.QueryParam("time"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time"})
	}
	day, err := h.Repo.ListByDay(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available": engine.IsSlotAvailable(day, date, slotTime),
	})
}

type adminPatchReq struct {
	Date            *string `json:"date"`
	SlotTime        *string `json:"slot_time"`
	GameMode        *string `json:"game_mode"`
	Level           *string `json:"level"`
	MaxParticipants *int    `json:"max_participants"`
	IsPublic        *bool   `json:"is_public"`
}

type ownerPatchReq struct {
	ParticipantEmail string `json:"participant_email"`
	Confirmed        *bool  `json:"confirmed"`
}

// Patch handles PATCH /v1/reservations/:id. Admins edit the core
// fields (date, slot_time, game_mode, level, max_participants,
// is_public) with the capacity invariant and, when the slot moves,
// slot availability re-validated. Owners are limited to managing
// their invitees' confirmation flags; everything else is theirs only
// through cancel.
func (h *ReservationHandler) Patch(c echo.Context) error {
	viewer := viewerFrom(c)
	id := c.Param("id")
	ctx := c.Request().Context()

	res, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		return engineError(c, err)
	}
	if !engine.CanMutate(&res, viewer) {
		return engineError(c, engine.ErrAccessDenied)
	}

	if viewer.Admin {
		return h.adminPatch(c, &res)
	}
	return h.ownerPatch(c, &res)
}

func (h *ReservationHandler) adminPatch(c echo.Context, res *model.Reservation) error {
	var req adminPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	patch := repository.ReservationPatch{
		GameMode: req.GameMode,
		IsPublic: req.IsPublic,
	}
	if req.Date != nil {
		if _, err := time.Parse(engine.DateLayout, *req.Date); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
		patch.Date = req.Date
	}
	if req.SlotTime != nil {
		norm, ok := engine.NormalizeTime(*req.SlotTime)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot_time"})
		}
		patch.SlotTime = &norm
	}
	if req.Level != nil {
		if *req.Level != "" && *req.Level != model.LevelBeginner &&
			*req.Level != model.LevelIntermediate && *req.Level != model.LevelAdvanced {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid level"})
		}
		patch.Level = req.Level
	}
	if req.MaxParticipants != nil {
		if err := h.Policy.ValidateMax(res, *req.MaxParticipants); err != nil {
			return engineError(c, err)
		}
		patch.MaxParticipants = req.MaxParticipants
	}

	ctx := c.Request().Context()
	// Moving the slot re-checks availability against the target day.
	if patch.Date != nil || patch.SlotTime != nil {
		date, slotTime := res.Date, res.SlotTime
		if patch.Date != nil {
			date = *patch.Date
		}
		if patch.SlotTime != nil {
			slotTime = *patch.SlotTime
		}
		if date != res.Date || slotTime != res.SlotTime {
			day, err := h.Repo.ListByDay(ctx, date)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}
			if !engine.IsSlotAvailable(day, date, slotTime) {
				return engineError(c, engine.ErrSlotConflict)
			}
		}
	}

	if err := h.Repo.UpdateFields(ctx, res.ID, patch); err != nil {
		return engineError(c, err)
	}
	updated, err := h.Repo.GetByID(ctx, res.ID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ReservationHandler) ownerPatch(c echo.Context, res *model.Reservation) error {
	var req ownerPatchReq
	if err := c.Bind(&req); err != nil || req.ParticipantEmail == "" || req.Confirmed == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "participant_email and confirmed required"})
	}
	email := engine.NormalizeEmail(req.ParticipantEmail)
	// Validate against the in-memory aggregate first so capacity and
	// terminal-state failures surface without a write.
	check := *res
	check.Participants = append([]model.Participant(nil), res.Participants...)
	if err := engine.SetParticipantConfirmation(&check, email, *req.Confirmed, h.Policy); err != nil {
		return engineError(c, err)
	}

	ctx := c.Request().Context()
	change, promoted, err := h.Repo.SetParticipantConfirmation(ctx, res.ID, email, *req.Confirmed, h.Policy.EffectiveMax(res))
	if err != nil {
		return engineError(c, err)
	}
	updated, err := h.Repo.GetByID(ctx, res.ID)
	if err != nil {
		return engineError(c, err)
	}
	if promoted {
		service.PublishStatusChanged(ctx, statusEvent(&updated, change))
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/reservations/:id. The same route serves
// two privileges: owners cancel (the record stays, status becomes
// cancelled), admins hard-delete (the record is gone, terminal and
// irreversible).
func (h *ReservationHandler) Delete(c echo.Context) error {
	viewer := viewerFrom(c)
	id := c.Param("id")
	ctx := c.Request().Context()

	res, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		return engineError(c, err)
	}
	if !engine.CanMutate(&res, viewer) {
		return engineError(c, engine.ErrAccessDenied)
	}

	if viewer.Admin {
		if err := h.Repo.Delete(ctx, id); err != nil {
			return engineError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	change, err := engine.Transition(&res, model.StatusCancelled)
	if err != nil {
		return engineError(c, err)
	}
	if err := h.Repo.UpdateStatus(ctx, id, change.From, change.To); err != nil {
		return engineError(c, err)
	}
	service.PublishStatusChanged(ctx, statusEvent(&res, change))
	return c.NoContent(http.StatusNoContent)
}

// statusEvent builds the queue payload for one transition.
func statusEvent(r *model.Reservation, change engine.StatusChange) queue.ReservationStatusChanged {
	return queue.ReservationStatusChanged{
		ReservationID: r.ID,
		OldStatus:     change.From,
		NewStatus:     change.To,
		OwnerID:       r.OwnerID,
		Date:          r.Date,
		SlotTime:      r.SlotTime,
		GameMode:      r.GameMode,
		ChangedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}
