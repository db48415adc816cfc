package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	pointsKPICreated = 10
	pointsKPIUpdate  = 10
)

type KPIService interface {
	Create(ctx context.Context, servantID uint64, createdBy, title, description, unit string, target float64, deadline time.Time) (*model.KPI, error)
	Get(ctx context.Context, id uint64) (*model.KPI, error)
	ListByServant(ctx context.Context, servantID uint64, limit, offset int) ([]model.KPI, int64, error)
	// UpdateProgress records previous/new values, awards points to the
	// updater, and notifies supervisors; hitting the target emits an
	// ACHIEVEMENT notification instead of a plain update.
	UpdateProgress(ctx context.Context, kpiID uint64, updatedBy string, newValue float64, notes string, evidence []string) (*model.KPI, error)
	ListUpdates(ctx context.Context, kpiID uint64) ([]model.KPIUpdate, error)
}

type kpiService struct {
	repo         repository.KPIRepository
	servantRepo  repository.CivilServantRepository
	supervisions repository.SupervisionRepository
	ledger       LedgerService
	notifier     NotificationService
	log          *zap.Logger
}

func NewKPIService(
	repo repository.KPIRepository,
	servantRepo repository.CivilServantRepository,
	supervisions repository.SupervisionRepository,
	ledger LedgerService,
	notifier NotificationService,
	log *zap.Logger,
) KPIService {
	if log == nil {
		log = zap.NewNop()
	}
	return &kpiService{
		repo:         repo,
		servantRepo:  servantRepo,
		supervisions: supervisions,
		ledger:       ledger,
		notifier:     notifier,
		log:          log,
	}
}

func (s *kpiService) Create(ctx context.Context, servantID uint64, createdBy, title, description, unit string, target float64, deadline time.Time) (*model.KPI, error) {
	title = strings.TrimSpace(title)
	unit = strings.TrimSpace(unit)
	if title == "" || unit == "" {
		return nil, fmt.Errorf("%w: title and unit are required", ErrInvalidInput)
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target must be positive", ErrInvalidInput)
	}
	if _, err := s.servantRepo.FindByID(ctx, servantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	k := &model.KPI{
		CivilServantID: servantID,
		Title:          title,
		Description:    description,
		Target:         target,
		Unit:           unit,
		Deadline:       deadline,
		CreatedBy:      createdBy,
	}
	if err := s.repo.Create(ctx, k); err != nil {
		return nil, err
	}
	if _, err := s.ledger.Award(ctx, createdBy, pointsKPICreated, "kpi created",
		fmt.Sprintf("%d", k.ID), "kpi"); err != nil {
		s.log.Warn("kpi points not awarded", zap.String("user", createdBy), zap.Error(err))
	}
	return k, nil
}

func (s *kpiService) Get(ctx context.Context, id uint64) (*model.KPI, error) {
	k, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return k, nil
}

func (s *kpiService) ListByServant(ctx context.Context, servantID uint64, limit, offset int) ([]model.KPI, int64, error) {
	return s.repo.ListByServant(ctx, servantID, limit, offset)
}

func (s *kpiService) UpdateProgress(ctx context.Context, kpiID uint64, updatedBy string, newValue float64, notes string, evidence []string) (*model.KPI, error) {
	if newValue < 0 {
		return nil, fmt.Errorf("%w: value must not be negative", ErrInvalidInput)
	}
	k, err := s.Get(ctx, kpiID)
	if err != nil {
		return nil, err
	}
	previous := k.Current
	k.Current = newValue
	if err := s.repo.Save(ctx, k); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUpdate(ctx, &model.KPIUpdate{
		KPIID:         kpiID,
		PreviousValue: previous,
		NewValue:      newValue,
		Notes:         notes,
		Evidence:      evidence,
		UpdatedBy:     updatedBy,
	}); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Award(ctx, updatedBy, pointsKPIUpdate, "kpi progress update",
		fmt.Sprintf("%d", kpiID), "kpi"); err != nil {
		s.log.Warn("kpi update points not awarded", zap.String("user", updatedBy), zap.Error(err))
	}

	typ := model.NotificationUpdate
	title := "KPI updated"
	message := fmt.Sprintf("KPI %q moved from %g to %g %s", k.Title, previous, newValue, k.Unit)
	if previous < k.Target && newValue >= k.Target {
		typ = model.NotificationAchievement
		title = "KPI target reached"
		message = fmt.Sprintf("KPI %q reached its target of %g %s", k.Title, k.Target, k.Unit)
	}
	uids, err := s.supervisions.ActiveSupervisorUIDs(ctx, k.CivilServantID)
	if err != nil {
		s.log.Warn("kpi fan-out skipped", zap.Uint64("servant", k.CivilServantID), zap.Error(err))
		return k, nil
	}
	ref := fmt.Sprintf("%d", kpiID)
	for _, uid := range uids {
		if uid == updatedBy {
			continue
		}
		s.notifier.Notify(ctx, uid, title, message, typ, ref, "kpi")
	}
	return k, nil
}

func (s *kpiService) ListUpdates(ctx context.Context, kpiID uint64) ([]model.KPIUpdate, error) {
	if _, err := s.Get(ctx, kpiID); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, kpiID)
}
