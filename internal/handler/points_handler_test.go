package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civitrack/civitrack-backend/internal/middleware"
	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type stubLedgerService struct {
	ledger *model.CitizenPoints
	err    error
	txns   []model.PointTransaction
}

func (s *stubLedgerService) GetOrCreate(_ context.Context, uid string) (*model.CitizenPoints, error) {
	return s.ledger, s.err
}

func (s *stubLedgerService) Get(_ context.Context, uid string) (*model.CitizenPoints, error) {
	return s.ledger, s.err
}

func (s *stubLedgerService) Award(_ context.Context, uid string, amount int64, reason, refID, refType string) (*model.CitizenPoints, error) {
	return s.ledger, s.err
}

func (s *stubLedgerService) Spend(_ context.Context, uid string, amount int64, reason, refID, refType string) (*model.CitizenPoints, error) {
	return s.ledger, s.err
}

func (s *stubLedgerService) Refund(_ context.Context, uid string, amount int64, reason, refID, refType string) (*model.CitizenPoints, error) {
	return s.ledger, s.err
}

func (s *stubLedgerService) RecentTransactions(_ context.Context, uid string, limit int) ([]model.PointTransaction, error) {
	return s.txns, s.err
}

func newPointsContext(t *testing.T, uid string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/me/points", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != "" {
		c.Set(middleware.CtxUID, uid)
	}
	return c, rec
}

func TestPointsGet(t *testing.T) {
	h := NewPointsHandler(&stubLedgerService{
		ledger: &model.CitizenPoints{Balance: 140, TotalEarned: 200, TotalSpent: 60},
	})
	c, rec := newPointsContext(t, "user-1")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got LedgerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Balance != 140 || got.TotalEarned != 200 || got.TotalSpent != 60 {
		t.Fatalf("body = %+v", got)
	}
}

func TestPointsGetWithoutUID(t *testing.T) {
	h := NewPointsHandler(&stubLedgerService{})
	c, rec := newPointsContext(t, "")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestPointsServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrInsufficientBalance, http.StatusConflict},
		{service.ErrInvalidAmount, http.StatusBadRequest},
	}
	for _, tt := range tests {
		h := NewPointsHandler(&stubLedgerService{err: tt.err})
		c, rec := newPointsContext(t, "user-1")
		if err := h.Get(c); err != nil {
			t.Fatalf("Get: %v", err)
		}
		if rec.Code != tt.code {
			t.Errorf("err %v -> status %d, want %d", tt.err, rec.Code, tt.code)
		}
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body.Error.Code == "" {
			t.Errorf("error envelope missing code for %v", tt.err)
		}
	}
}
