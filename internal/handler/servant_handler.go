package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ServantHandler struct {
	svc          service.ServantService
	transparency service.TransparencyService
}

func NewServantHandler(svc service.ServantService, transparency service.TransparencyService) *ServantHandler {
	return &ServantHandler{svc: svc, transparency: transparency}
}

type createServantRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Position     string `json:"position" validate:"required,max=255"`
	Department   string `json:"department" validate:"required,max=255"`
	Location     string `json:"location" validate:"max=255"`
	ProfileImage string `json:"profileImage"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string `json:"contactPhone" validate:"max=64"`
}

type ServantResponse struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Position     string `json:"position"`
	Department   string `json:"department"`
	Location     string `json:"location,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

func toServantResponse(s *model.CivilServant) ServantResponse {
	return ServantResponse{
		ID:           s.ID,
		Name:         s.Name,
		Position:     s.Position,
		Department:   s.Department,
		Location:     s.Location,
		ProfileImage: s.ProfileImage,
		ContactEmail: s.ContactEmail,
		ContactPhone: s.ContactPhone,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ServantHandler) Create(c echo.Context) error {
	var req createServantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	sv, err := h.svc.Create(c.Request().Context(), &model.CivilServant{
		Name:         req.Name,
		Position:     req.Position,
		Department:   req.Department,
		Location:     req.Location,
		ProfileImage: req.ProfileImage,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, toServantResponse(sv))
}

func (h *ServantHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	sv, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toServantResponse(sv))
}

func (h *ServantHandler) List(c echo.Context) error {
	limit, offset := pagination(c)
	f := repository.ServantFilter{
		Department: c.QueryParam("department"),
		Position:   c.QueryParam("position"),
		Location:   c.QueryParam("location"),
	}
	list, total, err := h.svc.List(c.Request().Context(), f, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to list servants"))
	}
	resp := make([]ServantResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toServantResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"servants": resp,
		"total":    total,
	})
}

func (h *ServantHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req createServantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	sv, err := h.svc.Update(c.Request().Context(), id, func(s *model.CivilServant) {
		s.Name = req.Name
		s.Position = req.Position
		s.Department = req.Department
		s.Location = req.Location
		s.ProfileImage = req.ProfileImage
		s.ContactEmail = req.ContactEmail
		s.ContactPhone = req.ContactPhone
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toServantResponse(sv))
}

func (h *ServantHandler) Transparency(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	score, tr, err := h.transparency.ScoreServant(c.Request().Context(), id)
	if err != nil {
		if err == service.ErrScoringUnavailable {
			return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "scoring unavailable"))
		}
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"score": score,
		"record": map[string]interface{}{
			"obligationsTotal":     tr.ObligationsTotal,
			"obligationsCompleted": tr.ObligationsCompleted,
			"obligationsOverdue":   tr.ObligationsOverdue,
			"kpisOnTarget":         tr.KPIsOnTarget,
			"kpisTotal":            tr.KPIsTotal,
			"attendanceRate":       tr.AttendanceRate,
		},
	})
}

func pagination(c echo.Context) (limit, offset int) {
	limit = 20
	if lStr := c.QueryParam("limit"); lStr != "" {
		if parsed, err := strconv.Atoi(lStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if oStr := c.QueryParam("offset"); oStr != "" {
		if parsed, err := strconv.Atoi(oStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
