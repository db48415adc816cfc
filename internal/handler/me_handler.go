package handler

import (
	"net/http"

	"github.com/civitrack/civitrack-backend/internal/middleware"
	"github.com/civitrack/civitrack-backend/internal/rbac"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// MeHandler bundles everything the client needs to render the signed-in
// user's dashboard in one round trip.
type MeHandler struct {
	ledger        service.LedgerService
	preferences   service.PreferenceService
	supervisions  service.SupervisionService
	notifications service.NotificationService
}

func NewMeHandler(
	ledger service.LedgerService,
	preferences service.PreferenceService,
	supervisions service.SupervisionService,
	notifications service.NotificationService,
) *MeHandler {
	return &MeHandler{
		ledger:        ledger,
		preferences:   preferences,
		supervisions:  supervisions,
		notifications: notifications,
	}
}

func (h *MeHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	uid, _ := c.Get(middleware.CtxUID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	role := middleware.RoleOf(c)

	ledger, err := h.ledger.GetOrCreate(ctx, uid)
	if err != nil {
		return serviceError(c, err)
	}
	prefs, err := h.preferences.GetOrCreate(ctx, uid)
	if err != nil {
		return serviceError(c, err)
	}
	sups, err := h.supervisions.ListMine(ctx, uid)
	if err != nil {
		return serviceError(c, err)
	}
	unread, err := h.notifications.CountUnread(ctx, uid)
	if err != nil {
		return serviceError(c, err)
	}

	followed := make([]uint64, 0, len(sups))
	for _, s := range sups {
		followed = append(followed, s.CivilServantID)
	}

	perms := rbac.PermissionsOf(role)
	permStrings := make([]string, 0, len(perms))
	for _, p := range perms {
		permStrings = append(permStrings, string(p))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"uid":              uid,
		"role":             string(role),
		"permissions":      permStrings,
		"points":           toLedgerResponse(ledger),
		"preferences":      toPreferencesResponse(prefs),
		"followedServants": followed,
		"unreadCount":      unread,
	})
}
