package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRewardTestRepo(t *testing.T) (RewardRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection, or each pool member sees its own empty :memory: DB.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.Reward{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRewardRepository(db), db
}

func TestDecrementStockUnlimited(t *testing.T) {
	repo, db := newRewardTestRepo(t)
	ctx := context.Background()

	rw := &model.Reward{
		Title:       "Digital badge",
		Description: "d",
		PointCost:   50,
		Category:    model.RewardCategoryDigitalBadge,
		IsActive:    true,
		Stock:       nil,
	}
	if err := repo.Create(ctx, rw); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A NULL stock never exhausts; the row must also stay NULL, since the
	// changed-rows check cannot distinguish "set NULL to NULL" from "no row".
	for i := 0; i < 3; i++ {
		if err := repo.DecrementStock(ctx, rw.ID); err != nil {
			t.Fatalf("DecrementStock %d: %v", i, err)
		}
	}
	var got model.Reward
	if err := db.First(&got, rw.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Stock != nil {
		t.Fatalf("stock = %d, want NULL", *got.Stock)
	}
}

func TestDecrementStockGuard(t *testing.T) {
	repo, db := newRewardTestRepo(t)
	ctx := context.Background()

	stock := int64(1)
	rw := &model.Reward{
		Title:       "Tote bag",
		Description: "d",
		PointCost:   50,
		Category:    model.RewardCategoryPhysicalItem,
		IsActive:    true,
		Stock:       &stock,
	}
	if err := repo.Create(ctx, rw); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.DecrementStock(ctx, rw.ID); err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	if err := repo.DecrementStock(ctx, rw.ID); !errors.Is(err, ErrStockExhausted) {
		t.Fatalf("err = %v, want ErrStockExhausted", err)
	}

	if err := repo.IncrementStock(ctx, rw.ID); err != nil {
		t.Fatalf("IncrementStock: %v", err)
	}
	var got model.Reward
	if err := db.First(&got, rw.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Stock == nil || *got.Stock != 1 {
		t.Fatalf("stock = %v, want 1", got.Stock)
	}
}

func TestDecrementStockMissingReward(t *testing.T) {
	repo, _ := newRewardTestRepo(t)
	if err := repo.DecrementStock(context.Background(), 404); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}
