package handler

import (
	"errors"
	"net/http"

	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// serviceError maps service sentinel errors onto the response envelope.
// Anything unrecognized becomes an opaque 500.
func serviceError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrInvalidInput) {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_input", err.Error()))
	}
	switch err {
	case service.ErrNotFound:
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "resource not found"))
	case service.ErrInvalidAmount:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_amount", "amount must be positive"))
	case service.ErrInsufficientBalance:
		return c.JSON(http.StatusConflict, NewErrorResponse("insufficient_balance", "not enough points"))
	case service.ErrForbidden:
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case service.ErrInvalidStatus:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_status", "invalid status transition"))
	case service.ErrOutOfStock:
		return c.JSON(http.StatusConflict, NewErrorResponse("out_of_stock", "reward out of stock"))
	case service.ErrRewardInactive:
		return c.JSON(http.StatusConflict, NewErrorResponse("reward_inactive", "reward not active"))
	case service.ErrNotCancellable:
		return c.JSON(http.StatusConflict, NewErrorResponse("not_cancellable", "redemption cannot be cancelled"))
	case service.ErrInvalidPreferences:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_preferences", "invalid preference values"))
	case service.ErrInvalidNotificationType:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_type", "invalid notification type"))
	}
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "operation failed"))
}
