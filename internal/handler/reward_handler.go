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

type RewardHandler struct {
	svc service.RewardService
}

func NewRewardHandler(svc service.RewardService) *RewardHandler {
	return &RewardHandler{svc: svc}
}

type createRewardRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	PointCost   int64  `json:"pointCost" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required"`
	Stock       *int64 `json:"stock" validate:"omitempty,gte=0"`
	Image       string `json:"image"`
}

type redeemRequest struct {
	DeliveryInfo string `json:"deliveryInfo"`
}

type RewardResponse struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PointCost   int64  `json:"pointCost"`
	Category    string `json:"category"`
	IsActive    bool   `json:"isActive"`
	Stock       *int64 `json:"stock,omitempty"`
	Image       string `json:"image,omitempty"`
}

func toRewardResponse(r *model.Reward) RewardResponse {
	return RewardResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		PointCost:   r.PointCost,
		Category:    string(r.Category),
		IsActive:    r.IsActive,
		Stock:       r.Stock,
		Image:       r.Image,
	}
}

type RedemptionResponse struct {
	ID           uint64 `json:"id"`
	RewardID     uint64 `json:"rewardId"`
	PointsSpent  int64  `json:"pointsSpent"`
	Status       string `json:"status"`
	Code         string `json:"code"`
	DeliveryInfo string `json:"deliveryInfo,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

func toRedemptionResponse(r *model.RewardRedemption) RedemptionResponse {
	return RedemptionResponse{
		ID:           r.ID,
		RewardID:     r.RewardID,
		PointsSpent:  r.PointsSpent,
		Status:       string(r.Status),
		Code:         r.Code,
		DeliveryInfo: r.DeliveryInfo,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

func (h *RewardHandler) Create(c echo.Context) error {
	var req createRewardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	rw, err := h.svc.CreateReward(c.Request().Context(), &model.Reward{
		Title:       req.Title,
		Description: req.Description,
		PointCost:   req.PointCost,
		Category:    model.RewardCategory(req.Category),
		IsActive:    true,
		Stock:       req.Stock,
		Image:       req.Image,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, toRewardResponse(rw))
}

func (h *RewardHandler) List(c echo.Context) error {
	limit, offset := pagination(c)
	category := model.RewardCategory(c.QueryParam("category"))
	list, total, err := h.svc.ListRewards(c.Request().Context(), category, limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]RewardResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toRewardResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rewards": resp,
		"total":   total,
	})
}

func (h *RewardHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	rw, err := h.svc.GetReward(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toRewardResponse(rw))
}

func (h *RewardHandler) Redeem(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req redeemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	uid := c.Get(middleware.CtxUID).(string)
	red, err := h.svc.Redeem(c.Request().Context(), id, uid, req.DeliveryInfo)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, toRedemptionResponse(red))
}

func (h *RewardHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	uid := c.Get(middleware.CtxUID).(string)
	red, err := h.svc.Cancel(c.Request().Context(), id, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toRedemptionResponse(red))
}

func (h *RewardHandler) MyRedemptions(c echo.Context) error {
	uid := c.Get(middleware.CtxUID).(string)
	limit, _ := pagination(c)
	list, err := h.svc.ListRedemptions(c.Request().Context(), uid, limit)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]RedemptionResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toRedemptionResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"redemptions": resp})
}
