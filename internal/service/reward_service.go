package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOutOfStock     = errors.New("reward out of stock")
	ErrRewardInactive = errors.New("reward not active")
	ErrForbidden      = errors.New("forbidden")
	ErrNotCancellable = errors.New("redemption not cancellable")
)

type RewardService interface {
	CreateReward(ctx context.Context, rw *model.Reward) (*model.Reward, error)
	GetReward(ctx context.Context, id uint64) (*model.Reward, error)
	ListRewards(ctx context.Context, category model.RewardCategory, limit, offset int) ([]model.Reward, int64, error)
	// Redeem spends points through the ledger, takes a unit of stock and
	// creates a PENDING redemption. Points and stock are restored when a
	// later step fails.
	Redeem(ctx context.Context, rewardID uint64, userUID, deliveryInfo string) (*model.RewardRedemption, error)
	// Cancel refunds a PENDING redemption and restores stock. Only the
	// redeeming user may cancel.
	Cancel(ctx context.Context, redemptionID uint64, userUID string) (*model.RewardRedemption, error)
	ListRedemptions(ctx context.Context, userUID string, limit int) ([]model.RewardRedemption, error)
}

type rewardService struct {
	repo     repository.RewardRepository
	ledger   LedgerService
	notifier NotificationService
	log      *zap.Logger
}

func NewRewardService(repo repository.RewardRepository, ledger LedgerService, notifier NotificationService, log *zap.Logger) RewardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &rewardService{repo: repo, ledger: ledger, notifier: notifier, log: log}
}

func (s *rewardService) CreateReward(ctx context.Context, rw *model.Reward) (*model.Reward, error) {
	rw.Title = strings.TrimSpace(rw.Title)
	if rw.Title == "" || strings.TrimSpace(rw.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrInvalidInput)
	}
	if rw.PointCost <= 0 {
		return nil, ErrInvalidAmount
	}
	if !rw.Category.Valid() {
		return nil, fmt.Errorf("%w: invalid category", ErrInvalidInput)
	}
	if rw.Stock != nil && *rw.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	rw.IsActive = true
	if err := s.repo.Create(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

func (s *rewardService) GetReward(ctx context.Context, id uint64) (*model.Reward, error) {
	rw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rw, nil
}

func (s *rewardService) ListRewards(ctx context.Context, category model.RewardCategory, limit, offset int) ([]model.Reward, int64, error) {
	return s.repo.ListActive(ctx, category, limit, offset)
}

func (s *rewardService) Redeem(ctx context.Context, rewardID uint64, userUID, deliveryInfo string) (*model.RewardRedemption, error) {
	rw, err := s.GetReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if !rw.IsActive {
		return nil, ErrRewardInactive
	}

	if err := s.repo.DecrementStock(ctx, rewardID); err != nil {
		if errors.Is(err, repository.ErrStockExhausted) {
			return nil, ErrOutOfStock
		}
		return nil, err
	}

	ref := fmt.Sprintf("%d", rewardID)
	if _, err := s.ledger.Spend(ctx, userUID, rw.PointCost, "reward redemption", ref, "reward"); err != nil {
		if restoreErr := s.repo.IncrementStock(ctx, rewardID); restoreErr != nil {
			s.log.Error("stock not restored after failed spend",
				zap.Uint64("reward", rewardID), zap.Error(restoreErr))
		}
		return nil, err
	}

	rd := &model.RewardRedemption{
		RewardID:     rewardID,
		UserUID:      userUID,
		PointsSpent:  rw.PointCost,
		Status:       model.RedemptionStatusPending,
		Code:         uuid.NewString(),
		DeliveryInfo: deliveryInfo,
	}
	if err := s.repo.CreateRedemption(ctx, rd); err != nil {
		if _, refundErr := s.ledger.Refund(ctx, userUID, rw.PointCost, "redemption failed", ref, "reward"); refundErr != nil {
			s.log.Error("points not refunded after failed redemption",
				zap.Uint64("reward", rewardID), zap.String("user", userUID), zap.Error(refundErr))
		}
		if restoreErr := s.repo.IncrementStock(ctx, rewardID); restoreErr != nil {
			s.log.Error("stock not restored after failed redemption",
				zap.Uint64("reward", rewardID), zap.Error(restoreErr))
		}
		return nil, err
	}

	s.notifier.Notify(ctx, userUID, "Reward redeemed",
		fmt.Sprintf("You redeemed %q for %d points", rw.Title, rw.PointCost),
		model.NotificationAchievement, fmt.Sprintf("%d", rd.ID), "redemption")
	return rd, nil
}

func (s *rewardService) Cancel(ctx context.Context, redemptionID uint64, userUID string) (*model.RewardRedemption, error) {
	rd, err := s.repo.FindRedemption(ctx, redemptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rd.UserUID != userUID {
		return nil, ErrForbidden
	}
	if rd.Status != model.RedemptionStatusPending {
		return nil, ErrNotCancellable
	}

	if _, err := s.ledger.Refund(ctx, userUID, rd.PointsSpent, "redemption cancelled",
		fmt.Sprintf("%d", rd.ID), "redemption"); err != nil {
		return nil, err
	}
	if err := s.repo.IncrementStock(ctx, rd.RewardID); err != nil {
		s.log.Warn("stock not restored on cancel", zap.Uint64("reward", rd.RewardID), zap.Error(err))
	}

	rd.Status = model.RedemptionStatusCancelled
	if err := s.repo.SaveRedemption(ctx, rd); err != nil {
		return nil, err
	}
	return rd, nil
}

func (s *rewardService) ListRedemptions(ctx context.Context, userUID string, limit int) ([]model.RewardRedemption, error) {
	return s.repo.ListRedemptionsByUser(ctx, userUID, limit)
}
