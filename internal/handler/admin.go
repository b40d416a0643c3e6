package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gamebox/reservation-server/internal/engine"
	"github.com/gamebox/reservation-server/internal/repository"
	"github.com/gamebox/reservation-server/internal/service"
)

// AdminHandler carries the moderation endpoints. Routes using it must
// sit behind RequireRole(RoleAdmin).
type AdminHandler struct {
	Repo *repository.ReservationRepo
}

// NewAdminHandler constructs an AdminHandler bound to the reservation
// repository.
func NewAdminHandler(repo *repository.ReservationRepo) *AdminHandler {
	if repo == nil {
		panic("nil repo passed to NewAdminHandler")
	}
	return &AdminHandler{Repo: repo}
}

type setStatusReq struct {
	Status string `json:"status"`
}

// SetStatus handles PUT /v1/admin/reservations/:id/status. The target
// status still has to be reachable from the current one; admins skip
// ownership checks, not the state machine.
func (h *AdminHandler) SetStatus(c echo.Context) error {
	var req setStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !engine.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx := c.Request().Context()
	res, err := h.Repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return engineError(c, err)
	}

	change, err := engine.Transition(&res, req.Status)
	if err != nil {
		return engineError(c, err)
	}
	if err := h.Repo.UpdateStatus(ctx, res.ID, change.From, change.To); err != nil {
		return engineError(c, err)
	}
	service.PublishStatusChanged(ctx, statusEvent(&res, change))
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}
