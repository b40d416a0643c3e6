package handler

// The share surface exposes a reservation outside the authenticated
// listing: anyone holding the link may read a public reservation and,
// while it is upcoming and has room, join it. Routes sit behind
// OptionalJWT so a logged-in owner or participant gets their extra
// access on the same URL.

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gamebox/reservation-server/internal/engine"
	"github.com/gamebox/reservation-server/internal/repository"
	"github.com/gamebox/reservation-server/internal/service"
)

// ShareHandler serves the share-link view and join endpoints.
type ShareHandler struct {
	Repo   *repository.ReservationRepo
	Policy *engine.CapacityPolicy
}

// NewShareHandler constructs a ShareHandler. Both dependencies must
// be non-nil.
func NewShareHandler(repo *repository.ReservationRepo, policy *engine.CapacityPolicy) *ShareHandler {
	if repo == nil || policy == nil {
		panic("nil dependency passed to NewShareHandler")
	}
	return &ShareHandler{Repo: repo, Policy: policy}
}

// Get handles GET /v1/reservations/share/:id. Visibility follows the
// access rules: public reservations are readable by anyone, private
// ones only by the owner, confirmed participants and admins.
func (h *ShareHandler) Get(c echo.Context) error {
	res, err := h.Repo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return engineError(c, err)
	}
	if !engine.CanView(&res, viewerFrom(c)) {
		return engineError(c, engine.ErrAccessDenied)
	}
	now := time.Now().UTC()
	return c.JSON(http.StatusOK, echo.Map{
		"reservation":     res,
		"confirmed_count": engine.ConfirmedCount(&res),
		"total_count":     engine.TotalCount(&res),
		"is_full":         h.Policy.IsFull(&res),
		"is_upcoming":     engine.IsUpcoming(&res, now),
		"is_past":         engine.IsPast(&res, now),
	})
}

type confirmReq struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Confirm handles POST /v1/reservations/share/:id/confirm. A listed
// participant confirming again is a no-op success regardless of any
// other gate; a new joiner must pass CanJoin (public, upcoming, not
// full) before the repository re-validates capacity under lock, so a
// concurrent race for the last place leaves exactly one of the two
// with 409 capacity_exceeded.
func (h *ShareHandler) Confirm(c echo.Context) error {
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	email := engine.NormalizeEmail(req.Email)
	viewer := viewerFrom(c)
	if email == "" {
		email = viewer.Email
	}
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	ctx := c.Request().Context()
	res, err := h.Repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return engineError(c, err)
	}

	// Idempotent path: a listed participant may always re-confirm.
	joining := engine.Viewer{Authenticated: viewer.Authenticated, UserID: viewer.UserID, Email: email}
	if !res.HasParticipant(email) {
		if !engine.CanJoin(&res, joining, h.Policy, time.Now().UTC()) {
			if h.Policy.IsFull(&res) {
				return engineError(c, engine.ErrCapacityExceeded)
			}
			return engineError(c, engine.ErrAccessDenied)
		}
	}

	change, promoted, err := h.Repo.ConfirmParticipant(ctx, res.ID, email, req.Name, h.Policy.EffectiveMax(&res))
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
	return c.JSON(http.StatusOK, echo.Map{
		"reservation":     updated,
		"confirmed_count": engine.ConfirmedCount(&updated),
		"total_count":     engine.TotalCount(&updated),
	})
}
