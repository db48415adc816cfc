package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type PunchCardHandler struct {
	svc service.PunchCardService
}

func NewPunchCardHandler(svc service.PunchCardService) *PunchCardHandler {
	return &PunchCardHandler{svc: svc}
}

type recordPunchCardRequest struct {
	Date     string `json:"date" validate:"required"`
	Status   string `json:"status" validate:"required"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Notes    string `json:"notes"`
}

type PunchCardResponse struct {
	ID             uint64  `json:"id"`
	CivilServantID uint64  `json:"civilServantId"`
	Date           string  `json:"date"`
	Status         string  `json:"status"`
	CheckIn        *string `json:"checkIn,omitempty"`
	CheckOut       *string `json:"checkOut,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

func toPunchCardResponse(p *model.PunchCard) PunchCardResponse {
	resp := PunchCardResponse{
		ID:             p.ID,
		CivilServantID: p.CivilServantID,
		Date:           p.Date.Format("2006-01-02"),
		Status:         string(p.Status),
		Notes:          p.Notes,
	}
	if p.CheckIn != nil {
		s := p.CheckIn.Format(time.RFC3339)
		resp.CheckIn = &s
	}
	if p.CheckOut != nil {
		s := p.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &s
	}
	return resp
}

func (h *PunchCardHandler) Record(c echo.Context) error {
	servantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req recordPunchCardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "date must be YYYY-MM-DD"))
	}
	var checkIn, checkOut *time.Time
	if req.CheckIn != "" {
		t, err := time.Parse(time.RFC3339, req.CheckIn)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "checkIn must be RFC3339"))
		}
		checkIn = &t
	}
	if req.CheckOut != "" {
		t, err := time.Parse(time.RFC3339, req.CheckOut)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "checkOut must be RFC3339"))
		}
		checkOut = &t
	}
	card, err := h.svc.Record(c.Request().Context(), servantID, date,
		model.PunchCardStatus(req.Status), checkIn, checkOut, req.Notes)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toPunchCardResponse(card))
}

func (h *PunchCardHandler) ListByServant(c echo.Context) error {
	servantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	// Default to the trailing 30 days.
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "from must be YYYY-MM-DD"))
		}
		from = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "to must be YYYY-MM-DD"))
		}
		to = t
	}
	cards, err := h.svc.ListByServant(c.Request().Context(), servantID, from, to)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]PunchCardResponse, 0, len(cards))
	for i := range cards {
		resp = append(resp, toPunchCardResponse(&cards[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"punchCards": resp})
}
