package main

import (
	"context"
	"log"
	"time"

	"github.com/civitrack/civitrack-backend/internal/config"
	"github.com/civitrack/civitrack-backend/internal/db"
	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	srv, err := server.New(nil, cfg, logger, gitSHA, buildTime)
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		errCh <- srv.Start(addr)
	}()

	// Connect and migrate off the serving path so the health endpoint comes
	// up even while the database is still warming.
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			logger.Error("db connect failed", zap.Error(err))
			return
		}
		if err := conn.AutoMigrate(
			&model.CivilServant{},
			&model.Obligation{},
			&model.ObligationUpdate{},
			&model.KPI{},
			&model.KPIUpdate{},
			&model.PunchCard{},
			&model.CitizenPoints{},
			&model.PointTransaction{},
			&model.Reward{},
			&model.RewardRedemption{},
			&model.Supervision{},
			&model.Notification{},
			&model.UserPreferences{},
			&model.Setting{},
		); err != nil {
			logger.Error("auto migrate failed", zap.Error(err))
		}
		srv.SetDB(conn)
		logger.Info("database ready")

		if cfg.OverdueSweepMinutes > 0 {
			go runOverdueSweeper(srv, logger, time.Duration(cfg.OverdueSweepMinutes)*time.Minute)
		}
	}()

	if err := <-errCh; err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func runOverdueSweeper(srv *server.Server, logger *zap.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		n, err := srv.Obligations.SweepOverdue(ctx)
		cancel()
		if err != nil {
			logger.Error("overdue sweep failed", zap.Error(err))
			continue
		}
		if n > 0 {
			logger.Info("obligations marked overdue", zap.Int("count", n))
		}
	}
}
