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

var ErrInvalidStatus = errors.New("invalid status transition")

// Point grants for citizen contributions.
const (
	pointsObligationCreated  = 10
	pointsEvidenceUpdate     = 15
	pointsObligationProgress = 5
)

type ObligationService interface {
	Create(ctx context.Context, servantID uint64, createdBy string, title, description string, category model.ObligationCategory, deadline *time.Time) (*model.Obligation, error)
	Get(ctx context.Context, id uint64) (*model.Obligation, error)
	ListByServant(ctx context.Context, servantID uint64, status model.ObligationStatus, limit, offset int) ([]model.Obligation, int64, error)
	// UpdateStatus appends an audit row, awards points to the updater and
	// fans out UPDATE notifications to the servant's active supervisors.
	UpdateStatus(ctx context.Context, obligationID uint64, updatedBy string, status model.ObligationStatus, notes string, evidence []string) (*model.Obligation, error)
	ListUpdates(ctx context.Context, obligationID uint64) ([]model.ObligationUpdate, error)
	AttachEvidence(ctx context.Context, obligationID uint64, updatedBy, evidenceURL string) (*model.Obligation, error)
	// SweepOverdue flips past-deadline open obligations to OVERDUE and emits
	// DEADLINE notifications. Returns the number of obligations flipped.
	SweepOverdue(ctx context.Context) (int, error)
}

type obligationService struct {
	repo         repository.ObligationRepository
	servantRepo  repository.CivilServantRepository
	supervisions repository.SupervisionRepository
	ledger       LedgerService
	notifier     NotificationService
	log          *zap.Logger
}

func NewObligationService(
	repo repository.ObligationRepository,
	servantRepo repository.CivilServantRepository,
	supervisions repository.SupervisionRepository,
	ledger LedgerService,
	notifier NotificationService,
	log *zap.Logger,
) ObligationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &obligationService{
		repo:         repo,
		servantRepo:  servantRepo,
		supervisions: supervisions,
		ledger:       ledger,
		notifier:     notifier,
		log:          log,
	}
}

func (s *obligationService) Create(ctx context.Context, servantID uint64, createdBy string, title, description string, category model.ObligationCategory, deadline *time.Time) (*model.Obligation, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrInvalidInput)
	}
	switch category {
	case model.ObligationCategoryCampaignPromise, model.ObligationCategoryWorkObligation, model.ObligationCategoryPublicCommitment:
	default:
		return nil, fmt.Errorf("%w: invalid category", ErrInvalidInput)
	}
	if _, err := s.servantRepo.FindByID(ctx, servantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	o := &model.Obligation{
		CivilServantID: servantID,
		Title:          title,
		Description:    description,
		Category:       category,
		Status:         model.ObligationStatusPending,
		Deadline:       deadline,
		CreatedBy:      createdBy,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Award(ctx, createdBy, pointsObligationCreated, "obligation created",
		fmt.Sprintf("%d", o.ID), "obligation"); err != nil {
		s.log.Warn("obligation points not awarded", zap.String("user", createdBy), zap.Error(err))
	}
	return o, nil
}

func (s *obligationService) Get(ctx context.Context, id uint64) (*model.Obligation, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *obligationService) ListByServant(ctx context.Context, servantID uint64, status model.ObligationStatus, limit, offset int) ([]model.Obligation, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.ListByServant(ctx, servantID, status, limit, offset)
}

func (s *obligationService) UpdateStatus(ctx context.Context, obligationID uint64, updatedBy string, status model.ObligationStatus, notes string, evidence []string) (*model.Obligation, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	o, err := s.Get(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, ErrInvalidStatus
	}

	o.Status = status
	if len(evidence) > 0 {
		o.Evidence = append(o.Evidence, evidence...)
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUpdate(ctx, &model.ObligationUpdate{
		ObligationID: obligationID,
		Status:       status,
		Notes:        notes,
		Evidence:     evidence,
		UpdatedBy:    updatedBy,
	}); err != nil {
		return nil, err
	}

	points := int64(pointsObligationProgress)
	reason := "obligation status update"
	if len(evidence) > 0 {
		points = pointsEvidenceUpdate
		reason = "obligation update with evidence"
	}
	if _, err := s.ledger.Award(ctx, updatedBy, points, reason,
		fmt.Sprintf("%d", obligationID), "obligation"); err != nil {
		s.log.Warn("update points not awarded", zap.String("user", updatedBy), zap.Error(err))
	}

	s.notifySupervisors(ctx, o, updatedBy,
		fmt.Sprintf("Obligation %q moved to %s", o.Title, status))
	return o, nil
}

func (s *obligationService) ListUpdates(ctx context.Context, obligationID uint64) ([]model.ObligationUpdate, error) {
	if _, err := s.Get(ctx, obligationID); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, obligationID)
}

func (s *obligationService) AttachEvidence(ctx context.Context, obligationID uint64, updatedBy, evidenceURL string) (*model.Obligation, error) {
	o, err := s.Get(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	o.Evidence = append(o.Evidence, evidenceURL)
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	if _, err := s.ledger.Award(ctx, updatedBy, pointsEvidenceUpdate, "evidence attached",
		fmt.Sprintf("%d", obligationID), "obligation"); err != nil {
		s.log.Warn("evidence points not awarded", zap.String("user", updatedBy), zap.Error(err))
	}
	return o, nil
}

func (s *obligationService) SweepOverdue(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	flipped := 0
	for i := range expired {
		o := &expired[i]
		o.Status = model.ObligationStatusOverdue
		if err := s.repo.Save(ctx, o); err != nil {
			s.log.Warn("overdue flip failed", zap.Uint64("obligation", o.ID), zap.Error(err))
			continue
		}
		if err := s.repo.CreateUpdate(ctx, &model.ObligationUpdate{
			ObligationID: o.ID,
			Status:       model.ObligationStatusOverdue,
			Notes:        "deadline passed",
			UpdatedBy:    "system",
		}); err != nil {
			s.log.Warn("overdue audit row failed", zap.Uint64("obligation", o.ID), zap.Error(err))
		}
		flipped++
		s.notifySupervisorsTyped(ctx, o, "", model.NotificationDeadline,
			"Obligation overdue",
			fmt.Sprintf("Obligation %q passed its deadline", o.Title))
	}
	return flipped, nil
}

func (s *obligationService) notifySupervisors(ctx context.Context, o *model.Obligation, skipUID, message string) {
	s.notifySupervisorsTyped(ctx, o, skipUID, model.NotificationUpdate, "Obligation updated", message)
}

func (s *obligationService) notifySupervisorsTyped(ctx context.Context, o *model.Obligation, skipUID string, typ model.NotificationType, title, message string) {
	uids, err := s.supervisions.ActiveSupervisorUIDs(ctx, o.CivilServantID)
	if err != nil {
		s.log.Warn("supervisor fan-out skipped", zap.Uint64("servant", o.CivilServantID), zap.Error(err))
		return
	}
	ref := fmt.Sprintf("%d", o.ID)
	for _, uid := range uids {
		if uid == skipUID {
			continue
		}
		s.notifier.Notify(ctx, uid, title, message, typ, ref, "obligation")
	}
}
