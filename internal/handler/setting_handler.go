package handler

import (
	"net/http"
	"time"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type SettingHandler struct {
	svc service.SettingService
}

func NewSettingHandler(svc service.SettingService) *SettingHandler {
	return &SettingHandler{svc: svc}
}

type setSettingRequest struct {
	Key         string `json:"key" validate:"required,max=128"`
	Value       string `json:"value" validate:"required"`
	Description string `json:"description" validate:"max=255"`
	Group       string `json:"group" validate:"max=64"`
	IsPublic    bool   `json:"isPublic"`
}

type SettingResponse struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`
	IsPublic    bool   `json:"isPublic"`
	UpdatedAt   string `json:"updatedAt"`
}

func toSettingResponse(s *model.Setting) SettingResponse {
	return SettingResponse{
		Key:         s.Key,
		Value:       s.Value,
		Description: s.Description,
		Group:       s.Group,
		IsPublic:    s.IsPublic,
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *SettingHandler) Set(c echo.Context) error {
	var req setSettingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	s := &model.Setting{
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
		Group:       req.Group,
		IsPublic:    req.IsPublic,
	}
	if err := h.svc.Set(c.Request().Context(), s); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toSettingResponse(s))
}

func (h *SettingHandler) Get(c echo.Context) error {
	s, err := h.svc.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toSettingResponse(s))
}

func (h *SettingHandler) ListPublic(c echo.Context) error {
	list, err := h.svc.ListPublic(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]SettingResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toSettingResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"settings": resp})
}
