package service

import (
	"context"
	"errors"
	"testing"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"gorm.io/gorm"
)

type stubRewardRepo struct {
	rewards     map[uint64]*model.Reward
	redemptions map[uint64]*model.RewardRedemption
	nextID      uint64
}

func newStubRewardRepo() *stubRewardRepo {
	return &stubRewardRepo{
		rewards:     map[uint64]*model.Reward{},
		redemptions: map[uint64]*model.RewardRedemption{},
		nextID:      1,
	}
}

func (r *stubRewardRepo) Create(_ context.Context, rw *model.Reward) error {
	rw.ID = r.nextID
	r.nextID++
	cp := *rw
	r.rewards[rw.ID] = &cp
	return nil
}

func (r *stubRewardRepo) FindByID(_ context.Context, id uint64) (*model.Reward, error) {
	rw, ok := r.rewards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rw
	if rw.Stock != nil {
		stock := *rw.Stock
		cp.Stock = &stock
	}
	return &cp, nil
}

func (r *stubRewardRepo) ListActive(_ context.Context, category model.RewardCategory, limit, offset int) ([]model.Reward, int64, error) {
	var out []model.Reward
	for _, rw := range r.rewards {
		if rw.IsActive && (category == "" || rw.Category == category) {
			out = append(out, *rw)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubRewardRepo) Save(_ context.Context, rw *model.Reward) error {
	cp := *rw
	r.rewards[rw.ID] = &cp
	return nil
}

func (r *stubRewardRepo) DecrementStock(_ context.Context, id uint64) error {
	rw, ok := r.rewards[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if rw.Stock == nil {
		return nil
	}
	if *rw.Stock <= 0 {
		return repository.ErrStockExhausted
	}
	*rw.Stock--
	return nil
}

func (r *stubRewardRepo) IncrementStock(_ context.Context, id uint64) error {
	rw, ok := r.rewards[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if rw.Stock != nil {
		*rw.Stock++
	}
	return nil
}

func (r *stubRewardRepo) CreateRedemption(_ context.Context, rd *model.RewardRedemption) error {
	rd.ID = r.nextID
	r.nextID++
	cp := *rd
	r.redemptions[rd.ID] = &cp
	return nil
}

func (r *stubRewardRepo) FindRedemption(_ context.Context, id uint64) (*model.RewardRedemption, error) {
	rd, ok := r.redemptions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rd
	return &cp, nil
}

func (r *stubRewardRepo) SaveRedemption(_ context.Context, rd *model.RewardRedemption) error {
	cp := *rd
	r.redemptions[rd.ID] = &cp
	return nil
}

func (r *stubRewardRepo) ListRedemptionsByUser(_ context.Context, userUID string, limit int) ([]model.RewardRedemption, error) {
	var out []model.RewardRedemption
	for _, rd := range r.redemptions {
		if rd.UserUID == userUID && len(out) < limit {
			out = append(out, *rd)
		}
	}
	return out, nil
}

func (r *stubRewardRepo) SetDB(_ *gorm.DB) {}

func newRewardFixture(t *testing.T, stock *int64, cost int64) (RewardService, *stubRewardRepo, LedgerService) {
	t.Helper()
	rewardRepo := newStubRewardRepo()
	ledger := NewLedgerService(newStubLedgerRepo())
	notifier := NewNotificationService(newStubNotificationRepo(), nil)
	svc := NewRewardService(rewardRepo, ledger, notifier, nil)

	_, err := svc.CreateReward(context.Background(), &model.Reward{
		Title:       "City Hall Tour",
		Description: "Guided tour",
		PointCost:   cost,
		Category:    model.RewardCategoryExperience,
		Stock:       stock,
	})
	if err != nil {
		t.Fatalf("CreateReward: %v", err)
	}
	return svc, rewardRepo, ledger
}

func TestRedeemSpendsPointsAndStock(t *testing.T) {
	stock := int64(2)
	svc, repo, ledger := newRewardFixture(t, &stock, 60)
	ctx := context.Background()

	if _, err := ledger.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("ledger seed: %v", err)
	}
	rd, err := svc.Redeem(ctx, 1, "user-1", "pickup at desk")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if rd.Status != model.RedemptionStatusPending || rd.PointsSpent != 60 || rd.Code == "" {
		t.Fatalf("redemption = %+v", rd)
	}
	if *repo.rewards[1].Stock != 1 {
		t.Fatalf("stock = %d, want 1", *repo.rewards[1].Stock)
	}
	l, _ := ledger.Get(ctx, "user-1")
	if l.Balance != 40 {
		t.Fatalf("balance = %d, want 40", l.Balance)
	}
}

func TestRedeemInsufficientBalanceRestoresStock(t *testing.T) {
	stock := int64(1)
	svc, repo, ledger := newRewardFixture(t, &stock, 500)
	ctx := context.Background()

	if _, err := ledger.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("ledger seed: %v", err)
	}
	if _, err := svc.Redeem(ctx, 1, "user-1", ""); err != ErrInsufficientBalance {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if *repo.rewards[1].Stock != 1 {
		t.Fatalf("stock = %d after failed spend, want 1", *repo.rewards[1].Stock)
	}
	if len(repo.redemptions) != 0 {
		t.Fatalf("redemption created on failed spend")
	}
}

func TestRedeemOutOfStock(t *testing.T) {
	stock := int64(0)
	svc, _, ledger := newRewardFixture(t, &stock, 10)
	ctx := context.Background()

	if _, err := ledger.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("ledger seed: %v", err)
	}
	if _, err := svc.Redeem(ctx, 1, "user-1", ""); err != ErrOutOfStock {
		t.Fatalf("err = %v, want ErrOutOfStock", err)
	}
	l, _ := ledger.Get(ctx, "user-1")
	if l.Balance != 100 {
		t.Fatalf("balance changed on out-of-stock redeem: %d", l.Balance)
	}
}

func TestRedeemUnlimitedStock(t *testing.T) {
	svc, _, ledger := newRewardFixture(t, nil, 10)
	ctx := context.Background()

	if _, err := ledger.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("ledger seed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Redeem(ctx, 1, "user-1", ""); err != nil {
			t.Fatalf("Redeem %d: %v", i, err)
		}
	}
	l, _ := ledger.Get(ctx, "user-1")
	if l.Balance != 70 {
		t.Fatalf("balance = %d, want 70", l.Balance)
	}
}

type failingRedemptionRepo struct {
	*stubRewardRepo
	createErr error
}

func (r *failingRedemptionRepo) CreateRedemption(ctx context.Context, rd *model.RewardRedemption) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.stubRewardRepo.CreateRedemption(ctx, rd)
}

func TestRedeemFailedCreateRefundsAndRestoresStock(t *testing.T) {
	repo := &failingRedemptionRepo{
		stubRewardRepo: newStubRewardRepo(),
		createErr:      errors.New("insert failed"),
	}
	ledger := NewLedgerService(newStubLedgerRepo())
	notifier := NewNotificationService(newStubNotificationRepo(), nil)
	svc := NewRewardService(repo, ledger, notifier, nil)
	ctx := context.Background()

	stock := int64(2)
	if _, err := svc.CreateReward(ctx, &model.Reward{
		Title:       "City Hall Tour",
		Description: "Guided tour",
		PointCost:   50,
		Category:    model.RewardCategoryExperience,
		Stock:       &stock,
	}); err != nil {
		t.Fatalf("CreateReward: %v", err)
	}
	if _, err := ledger.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("ledger seed: %v", err)
	}

	if _, err := svc.Redeem(ctx, 1, "user-1", ""); err == nil {
		t.Fatal("Redeem succeeded with failing redemption insert")
	}

	// Spend and stock take must both be compensated.
	l, _ := ledger.Get(ctx, "user-1")
	if l.Balance != 100 || l.TotalSpent != 0 {
		t.Fatalf("after failed redeem balance=%d spent=%d, want 100/0", l.Balance, l.TotalSpent)
	}
	if *repo.rewards[1].Stock != 2 {
		t.Fatalf("stock = %d, want 2", *repo.rewards[1].Stock)
	}
	if len(repo.redemptions) != 0 {
		t.Fatalf("redemption rows = %d, want 0", len(repo.redemptions))
	}
}

func TestCancelRefundsAndRestoresStock(t *testing.T) {
	stock := int64(5)
	svc, repo, ledger := newRewardFixture(t, &stock, 60)
	ctx := context.Background()

	if _, err := ledger.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("ledger seed: %v", err)
	}
	rd, err := svc.Redeem(ctx, 1, "user-1", "")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	// Only the redeeming user may cancel.
	if _, err := svc.Cancel(ctx, rd.ID, "someone-else"); err != ErrForbidden {
		t.Fatalf("stranger cancel err = %v, want ErrForbidden", err)
	}

	out, err := svc.Cancel(ctx, rd.ID, "user-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if out.Status != model.RedemptionStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", out.Status)
	}
	if *repo.rewards[1].Stock != 5 {
		t.Fatalf("stock = %d, want 5", *repo.rewards[1].Stock)
	}
	l, _ := ledger.Get(ctx, "user-1")
	if l.Balance != 100 || l.TotalSpent != 0 {
		t.Fatalf("after cancel balance=%d spent=%d, want 100/0", l.Balance, l.TotalSpent)
	}

	// A cancelled redemption cannot be cancelled again.
	if _, err := svc.Cancel(ctx, rd.ID, "user-1"); err != ErrNotCancellable {
		t.Fatalf("repeat cancel err = %v, want ErrNotCancellable", err)
	}
}
