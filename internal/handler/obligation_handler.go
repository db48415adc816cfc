package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/civitrack/civitrack-backend/internal/middleware"
	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/civitrack/civitrack-backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// 10MB cap on evidence uploads.
const maxEvidenceSize = 10 << 20

type ObligationHandler struct {
	svc      service.ObligationService
	evidence *storage.EvidenceStore
}

func NewObligationHandler(svc service.ObligationService, evidence *storage.EvidenceStore) *ObligationHandler {
	return &ObligationHandler{svc: svc, evidence: evidence}
}

type createObligationRequest struct {
	CivilServantID uint64 `json:"civilServantId" validate:"required"`
	Title          string `json:"title" validate:"required,max=255"`
	Description    string `json:"description" validate:"required"`
	Category       string `json:"category" validate:"required"`
	Deadline       string `json:"deadline"`
}

type updateObligationStatusRequest struct {
	Status   string   `json:"status" validate:"required"`
	Notes    string   `json:"notes"`
	Evidence []string `json:"evidence"`
}

type ObligationResponse struct {
	ID             uint64   `json:"id"`
	CivilServantID uint64   `json:"civilServantId"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Status         string   `json:"status"`
	Deadline       *string  `json:"deadline,omitempty"`
	Evidence       []string `json:"evidence,omitempty"`
	CreatedBy      string   `json:"createdBy"`
	CreatedAt      string   `json:"createdAt"`
}

func toObligationResponse(o *model.Obligation) ObligationResponse {
	resp := ObligationResponse{
		ID:             o.ID,
		CivilServantID: o.CivilServantID,
		Title:          o.Title,
		Description:    o.Description,
		Category:       string(o.Category),
		Status:         string(o.Status),
		Evidence:       o.Evidence,
		CreatedBy:      o.CreatedBy,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
	if o.Deadline != nil {
		d := o.Deadline.Format(time.RFC3339)
		resp.Deadline = &d
	}
	return resp
}

func (h *ObligationHandler) Create(c echo.Context) error {
	var req createObligationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	var deadline *time.Time
	if req.Deadline != "" {
		t, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "deadline must be RFC3339"))
		}
		deadline = &t
	}
	uid := c.Get(middleware.CtxUID).(string)
	ob, err := h.svc.Create(c.Request().Context(), req.CivilServantID, uid,
		req.Title, req.Description, model.ObligationCategory(req.Category), deadline)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, toObligationResponse(ob))
}

func (h *ObligationHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	ob, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toObligationResponse(ob))
}

func (h *ObligationHandler) ListByServant(c echo.Context) error {
	servantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	limit, offset := pagination(c)
	status := model.ObligationStatus(c.QueryParam("status"))
	list, total, err := h.svc.ListByServant(c.Request().Context(), servantID, status, limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]ObligationResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toObligationResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"obligations": resp,
		"total":       total,
	})
}

func (h *ObligationHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req updateObligationStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	uid := c.Get(middleware.CtxUID).(string)
	ob, err := h.svc.UpdateStatus(c.Request().Context(), id, uid,
		model.ObligationStatus(req.Status), req.Notes, req.Evidence)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toObligationResponse(ob))
}

type ObligationUpdateResponse struct {
	ID        uint64   `json:"id"`
	Status    string   `json:"status"`
	Notes     string   `json:"notes,omitempty"`
	Evidence  []string `json:"evidence,omitempty"`
	UpdatedBy string   `json:"updatedBy"`
	CreatedAt string   `json:"createdAt"`
}

func (h *ObligationHandler) ListUpdates(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	updates, err := h.svc.ListUpdates(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]ObligationUpdateResponse, 0, len(updates))
	for _, u := range updates {
		resp = append(resp, ObligationUpdateResponse{
			ID:        u.ID,
			Status:    string(u.Status),
			Notes:     u.Notes,
			Evidence:  u.Evidence,
			UpdatedBy: u.UpdatedBy,
			CreatedAt: u.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"updates": resp})
}

// UploadEvidence accepts a multipart file, stores it and attaches the
// resulting URL to the obligation.
func (h *ObligationHandler) UploadEvidence(c echo.Context) error {
	if h.evidence == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "evidence storage not configured"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "file field required"))
	}
	if fh.Size > maxEvidenceSize {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "file too large"))
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "failed to read file"))
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxEvidenceSize+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "failed to read file"))
	}
	if len(data) > maxEvidenceSize {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "file too large"))
	}
	contentType := fh.Header.Get("Content-Type")
	url, err := h.evidence.Upload(c.Request().Context(),
		storage.ObjectPath("obligations", id, fh.Filename), contentType, data)
	if err != nil {
		if err == storage.ErrUnsupportedType {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unsupported content type"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "upload failed"))
	}
	uid := c.Get(middleware.CtxUID).(string)
	ob, err := h.svc.AttachEvidence(c.Request().Context(), id, uid, url)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toObligationResponse(ob))
}
