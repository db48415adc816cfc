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

type PointsHandler struct {
	svc service.LedgerService
}

func NewPointsHandler(svc service.LedgerService) *PointsHandler {
	return &PointsHandler{svc: svc}
}

type LedgerResponse struct {
	Balance     int64 `json:"balance"`
	TotalEarned int64 `json:"totalEarned"`
	TotalSpent  int64 `json:"totalSpent"`
}

func toLedgerResponse(l *model.CitizenPoints) LedgerResponse {
	return LedgerResponse{
		Balance:     l.Balance,
		TotalEarned: l.TotalEarned,
		TotalSpent:  l.TotalSpent,
	}
}

type TransactionResponse struct {
	ID            uint64 `json:"id"`
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	Reason        string `json:"reason"`
	ReferenceID   string `json:"referenceId,omitempty"`
	ReferenceType string `json:"referenceType,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

// Get returns the caller's ledger, seeding the welcome grant on first access.
func (h *PointsHandler) Get(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	ledger, err := h.svc.GetOrCreate(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toLedgerResponse(ledger))
}

func (h *PointsHandler) ListTransactions(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	limit := 20
	if lStr := c.QueryParam("limit"); lStr != "" {
		if parsed, err := strconv.Atoi(lStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	list, err := h.svc.RecentTransactions(c.Request().Context(), uid, limit)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]TransactionResponse, 0, len(list))
	for _, tx := range list {
		resp = append(resp, TransactionResponse{
			ID:            tx.ID,
			Type:          string(tx.Type),
			Amount:        tx.Amount,
			Reason:        tx.Reason,
			ReferenceID:   tx.ReferenceID,
			ReferenceType: tx.ReferenceType,
			CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": resp,
	})
}
