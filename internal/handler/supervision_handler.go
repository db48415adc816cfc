package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/civitrack/civitrack-backend/internal/middleware"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type SupervisionHandler struct {
	svc service.SupervisionService
}

func NewSupervisionHandler(svc service.SupervisionService) *SupervisionHandler {
	return &SupervisionHandler{svc: svc}
}

type SupervisionResponse struct {
	ID             uint64 `json:"id"`
	CivilServantID uint64 `json:"civilServantId"`
	CreatedAt      string `json:"createdAt"`
}

func (h *SupervisionHandler) Follow(c echo.Context) error {
	servantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	uid := c.Get(middleware.CtxUID).(string)
	sup, err := h.svc.Follow(c.Request().Context(), uid, servantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, SupervisionResponse{
		ID:             sup.ID,
		CivilServantID: sup.CivilServantID,
		CreatedAt:      sup.CreatedAt.Format(time.RFC3339),
	})
}

func (h *SupervisionHandler) Unfollow(c echo.Context) error {
	servantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	uid := c.Get(middleware.CtxUID).(string)
	if err := h.svc.Unfollow(c.Request().Context(), uid, servantID); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SupervisionHandler) ListMine(c echo.Context) error {
	uid := c.Get(middleware.CtxUID).(string)
	list, err := h.svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]SupervisionResponse, 0, len(list))
	for _, s := range list {
		resp = append(resp, SupervisionResponse{
			ID:             s.ID,
			CivilServantID: s.CivilServantID,
			CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"supervisions": resp})
}
