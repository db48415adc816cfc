package handler

import (
	"net/http"

	"github.com/civitrack/civitrack-backend/internal/middleware"
	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type PreferenceHandler struct {
	svc service.PreferenceService
}

func NewPreferenceHandler(svc service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

type updatePreferencesRequest struct {
	Language            string `json:"language" validate:"required,max=16"`
	Theme               string `json:"theme" validate:"required"`
	DeadlineReminders   bool   `json:"deadlineReminders"`
	ObligationUpdates   bool   `json:"obligationUpdates"`
	KPIAlerts           bool   `json:"kpiAlerts"`
	SystemNotifications bool   `json:"systemNotifications"`
	EmailNotifications  bool   `json:"emailNotifications"`
	PushNotifications   bool   `json:"pushNotifications"`
	DashboardLayout     string `json:"dashboardLayout" validate:"max=64"`
}

type PreferencesResponse struct {
	Language            string `json:"language"`
	Theme               string `json:"theme"`
	DeadlineReminders   bool   `json:"deadlineReminders"`
	ObligationUpdates   bool   `json:"obligationUpdates"`
	KPIAlerts           bool   `json:"kpiAlerts"`
	SystemNotifications bool   `json:"systemNotifications"`
	EmailNotifications  bool   `json:"emailNotifications"`
	PushNotifications   bool   `json:"pushNotifications"`
	DashboardLayout     string `json:"dashboardLayout"`
}

func toPreferencesResponse(p *model.UserPreferences) PreferencesResponse {
	return PreferencesResponse{
		Language:            p.Language,
		Theme:               string(p.Theme),
		DeadlineReminders:   p.DeadlineReminders,
		ObligationUpdates:   p.ObligationUpdates,
		KPIAlerts:           p.KPIAlerts,
		SystemNotifications: p.SystemNotifications,
		EmailNotifications:  p.EmailNotifications,
		PushNotifications:   p.PushNotifications,
		DashboardLayout:     p.DashboardLayout,
	}
}

func (h *PreferenceHandler) Get(c echo.Context) error {
	uid := c.Get(middleware.CtxUID).(string)
	prefs, err := h.svc.GetOrCreate(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toPreferencesResponse(prefs))
}

func (h *PreferenceHandler) Update(c echo.Context) error {
	var req updatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	uid := c.Get(middleware.CtxUID).(string)
	prefs, err := h.svc.Update(c.Request().Context(), uid, service.PreferencesUpdate{
		Language:            req.Language,
		Theme:               model.Theme(req.Theme),
		DeadlineReminders:   req.DeadlineReminders,
		ObligationUpdates:   req.ObligationUpdates,
		KPIAlerts:           req.KPIAlerts,
		SystemNotifications: req.SystemNotifications,
		EmailNotifications:  req.EmailNotifications,
		PushNotifications:   req.PushNotifications,
		DashboardLayout:     req.DashboardLayout,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toPreferencesResponse(prefs))
}
