package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/civitrack/civitrack-backend/internal/config"
	"github.com/civitrack/civitrack-backend/internal/db"
	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	if err := gdb.AutoMigrate(
		&model.CivilServant{},
		&model.Reward{},
		&model.Setting{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	canSeed, err := shouldSeed(gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("servants already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM civil_servants").Error; err != nil {
			return fmt.Errorf("clear servants: %w", err)
		}
		if err := tx.Create(buildSeedServants()).Error; err != nil {
			return fmt.Errorf("seed servants: %w", err)
		}
		if err := tx.Create(buildSeedRewards()).Error; err != nil {
			return fmt.Errorf("seed rewards: %w", err)
		}
		for _, s := range buildSeedSettings() {
			setting := s
			err := tx.Where("key_name = ?", setting.Key).
				Assign(map[string]interface{}{
					"value":       setting.Value,
					"description": setting.Description,
					"group_name":  setting.Group,
					"is_public":   setting.IsPublic,
				}).
				FirstOrCreate(&setting).Error
			if err != nil {
				return fmt.Errorf("seed setting %s: %w", setting.Key, err)
			}
		}
		log.Printf("seeded %d servants, %d rewards", len(buildSeedServants()), len(buildSeedRewards()))
		return nil
	})
}

func shouldSeed(gdb *gorm.DB) (bool, error) {
	if strings.EqualFold(os.Getenv("FORCE_SEED"), "true") {
		return true, nil
	}
	var count int64
	if err := gdb.Model(&model.CivilServant{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count servants: %w", err)
	}
	return count == 0, nil
}

func buildSeedServants() []model.CivilServant {
	return []model.CivilServant{
		{Name: "Aisha Rahman", Position: "City Mayor", Department: "City Hall", Location: "Central District", ContactEmail: "mayor@city.example"},
		{Name: "Daniel Okoye", Position: "Commissioner", Department: "Public Works", Location: "Central District", ContactEmail: "works@city.example"},
		{Name: "Maria Santos", Position: "Director", Department: "Public Health", Location: "North District", ContactEmail: "health@city.example"},
		{Name: "Viktor Lindqvist", Position: "Superintendent", Department: "Education", Location: "East District"},
		{Name: "Chen Wei", Position: "Chief", Department: "Transportation", Location: "South District"},
		{Name: "Fatima Al-Zahra", Position: "Commissioner", Department: "Environment", Location: "West District"},
	}
}

func buildSeedRewards() []model.Reward {
	unlimited := func() *int64 { return nil }
	limited := func(n int64) *int64 { return &n }
	return []model.Reward{
		{Title: "Civic Watcher Badge", Description: "Digital badge for active supervision.", PointCost: 50, Category: model.RewardCategoryDigitalBadge, IsActive: true, Stock: unlimited()},
		{Title: "Accountability Medal", Description: "Commemorative NFT medal for sustained oversight.", PointCost: 200, Category: model.RewardCategoryNFTMedal, IsActive: true, Stock: limited(100)},
		{Title: "City Hall Tour", Description: "Guided behind-the-scenes tour of city hall.", PointCost: 500, Category: model.RewardCategoryExperience, IsActive: true, Stock: limited(20)},
		{Title: "Civic Tote Bag", Description: "Canvas tote bag with the platform emblem.", PointCost: 350, Category: model.RewardCategoryPhysicalItem, IsActive: true, Stock: limited(50)},
	}
}

func buildSeedSettings() []model.Setting {
	return []model.Setting{
		{Key: "platform.name", Value: "CiviTrack", Description: "Public display name", Group: "branding", IsPublic: true},
		{Key: "points.welcome_grant", Value: "100", Description: "Points granted on first sign-in", Group: "points", IsPublic: true},
		{Key: "supervision.max_follows", Value: "200", Description: "Max servants a citizen may follow", Group: "supervision", IsPublic: false},
	}
}
