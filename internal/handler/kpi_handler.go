package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/civitrack/civitrack-backend/internal/middleware"
	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type KPIHandler struct {
	svc service.KPIService
}

func NewKPIHandler(svc service.KPIService) *KPIHandler {
	return &KPIHandler{svc: svc}
}

type createKPIRequest struct {
	CivilServantID uint64  `json:"civilServantId" validate:"required"`
	Title          string  `json:"title" validate:"required,max=255"`
	Description    string  `json:"description"`
	Target         float64 `json:"target" validate:"required,gt=0"`
	Unit           string  `json:"unit" validate:"required,max=64"`
	Deadline       string  `json:"deadline" validate:"required"`
}

type updateKPIRequest struct {
	Value    float64  `json:"value" validate:"gte=0"`
	Notes    string   `json:"notes"`
	Evidence []string `json:"evidence"`
}

type KPIResponse struct {
	ID             uint64  `json:"id"`
	CivilServantID uint64  `json:"civilServantId"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Target         float64 `json:"target"`
	Current        float64 `json:"current"`
	Unit           string  `json:"unit"`
	Deadline       string  `json:"deadline"`
	CreatedBy      string  `json:"createdBy"`
	CreatedAt      string  `json:"createdAt"`
}

func toKPIResponse(k *model.KPI) KPIResponse {
	return KPIResponse{
		ID:             k.ID,
		CivilServantID: k.CivilServantID,
		Title:          k.Title,
		Description:    k.Description,
		Target:         k.Target,
		Current:        k.Current,
		Unit:           k.Unit,
		Deadline:       k.Deadline.Format(time.RFC3339),
		CreatedBy:      k.CreatedBy,
		CreatedAt:      k.CreatedAt.Format(time.RFC3339),
	}
}

func (h *KPIHandler) Create(c echo.Context) error {
	var req createKPIRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "deadline must be RFC3339"))
	}
	uid := c.Get(middleware.CtxUID).(string)
	kpi, err := h.svc.Create(c.Request().Context(), req.CivilServantID, uid,
		req.Title, req.Description, req.Unit, req.Target, deadline)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, toKPIResponse(kpi))
}

func (h *KPIHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	kpi, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toKPIResponse(kpi))
}

func (h *KPIHandler) ListByServant(c echo.Context) error {
	servantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	limit, offset := pagination(c)
	list, total, err := h.svc.ListByServant(c.Request().Context(), servantID, limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]KPIResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toKPIResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"kpis":  resp,
		"total": total,
	})
}

func (h *KPIHandler) UpdateProgress(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req updateKPIRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	uid := c.Get(middleware.CtxUID).(string)
	kpi, err := h.svc.UpdateProgress(c.Request().Context(), id, uid, req.Value, req.Notes, req.Evidence)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toKPIResponse(kpi))
}

type KPIUpdateResponse struct {
	ID            uint64   `json:"id"`
	PreviousValue float64  `json:"previousValue"`
	NewValue      float64  `json:"newValue"`
	Notes         string   `json:"notes,omitempty"`
	Evidence      []string `json:"evidence,omitempty"`
	UpdatedBy     string   `json:"updatedBy"`
	CreatedAt     string   `json:"createdAt"`
}

func (h *KPIHandler) ListUpdates(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	updates, err := h.svc.ListUpdates(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]KPIUpdateResponse, 0, len(updates))
	for _, u := range updates {
		resp = append(resp, KPIUpdateResponse{
			ID:            u.ID,
			PreviousValue: u.PreviousValue,
			NewValue:      u.NewValue,
			Notes:         u.Notes,
			Evidence:      u.Evidence,
			UpdatedBy:     u.UpdatedBy,
			CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"updates": resp})
}
