package handler

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/civitrack/civitrack-backend/internal/rbac"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	authClient *auth.Client
}

func NewUserHandler(client *auth.Client) *UserHandler {
	return &UserHandler{authClient: client}
}

type PublicUserResponse struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
	Role        string  `json:"role"`
}

func (h *UserHandler) GetPublic(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid uid"))
	}
	user, err := h.authClient.GetUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
	}
	role := rbac.RoleCitizen
	if claim, ok := user.CustomClaims["role"].(string); ok {
		role = rbac.ParseRole(claim)
	}
	resp := PublicUserResponse{
		UID:         user.UID,
		DisplayName: user.DisplayName,
		PhotoURL:    strPtrOrNil(user.PhotoURL),
		Role:        string(role),
	}
	return c.JSON(http.StatusOK, resp)
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// SetRole stores the role as a custom claim on the Firebase user. The claim
// takes effect on the user's next token refresh.
func (h *UserHandler) SetRole(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid uid"))
	}
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	if !rbac.Role(req.Role).Valid() {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unknown role"))
	}
	user, err := h.authClient.GetUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
	}
	claims := map[string]interface{}{}
	for k, v := range user.CustomClaims {
		claims[k] = v
	}
	claims["role"] = req.Role
	if err := h.authClient.SetCustomUserClaims(c.Request().Context(), uid, claims); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to set role"))
	}
	return c.JSON(http.StatusOK, map[string]string{"uid": uid, "role": req.Role})
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
