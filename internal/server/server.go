package server

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/civitrack/civitrack-backend/internal/ai"
	"github.com/civitrack/civitrack-backend/internal/config"
	"github.com/civitrack/civitrack-backend/internal/handler"
	appmw "github.com/civitrack/civitrack-backend/internal/middleware"
	"github.com/civitrack/civitrack-backend/internal/rbac"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"github.com/civitrack/civitrack-backend/internal/service"
	"github.com/civitrack/civitrack-backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	e     *echo.Echo
	log   *zap.Logger
	repos []interface{ SetDB(*gorm.DB) }

	Obligations service.ObligationService

	sha   string
	build string
}

func New(db *gorm.DB, cfg *config.Config, log *zap.Logger, sha, buildTime string) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin,
	}))

	ledgerRepo := repository.NewLedgerRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	servantRepo := repository.NewCivilServantRepository(db)
	obligationRepo := repository.NewObligationRepository(db)
	kpiRepo := repository.NewKPIRepository(db)
	punchRepo := repository.NewPunchCardRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	supervisionRepo := repository.NewSupervisionRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	ledgerSvc := service.NewLedgerService(ledgerRepo)
	notifSvc := service.NewNotificationService(notifRepo, log)
	servantSvc := service.NewServantService(servantRepo)
	obligationSvc := service.NewObligationService(obligationRepo, servantRepo, supervisionRepo, ledgerSvc, notifSvc, log)
	kpiSvc := service.NewKPIService(kpiRepo, servantRepo, supervisionRepo, ledgerSvc, notifSvc, log)
	punchSvc := service.NewPunchCardService(punchRepo, servantRepo)
	rewardSvc := service.NewRewardService(rewardRepo, ledgerSvc, notifSvc, log)
	supervisionSvc := service.NewSupervisionService(supervisionRepo, servantRepo, ledgerSvc, log)
	prefSvc := service.NewPreferenceService(prefRepo, log)
	settingSvc := service.NewSettingService(settingRepo)

	var scorer service.Scorer
	if os.Getenv("GEMINI_API_KEY") != "" {
		scorer = ai.NewTransparencyClient(cfg.GeminiModel, log)
	} else {
		log.Warn("GEMINI_API_KEY not set, transparency scoring disabled")
	}
	transparencySvc := service.NewTransparencyService(servantRepo, obligationRepo, kpiRepo, punchRepo, scorer)

	var evidenceStore *storage.EvidenceStore
	if cfg.StorageBucket != "" {
		store, err := storage.NewEvidenceStore(context.Background(), cfg.StorageBucket)
		if err != nil {
			log.Warn("evidence storage unavailable", zap.Error(err))
		} else {
			evidenceStore = store
		}
	}

	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		return nil, err
	}

	pointsHandler := handler.NewPointsHandler(ledgerSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)
	servantHandler := handler.NewServantHandler(servantSvc, transparencySvc)
	obligationHandler := handler.NewObligationHandler(obligationSvc, evidenceStore)
	kpiHandler := handler.NewKPIHandler(kpiSvc)
	punchHandler := handler.NewPunchCardHandler(punchSvc)
	rewardHandler := handler.NewRewardHandler(rewardSvc)
	supervisionHandler := handler.NewSupervisionHandler(supervisionSvc)
	prefHandler := handler.NewPreferenceHandler(prefSvc)
	settingHandler := handler.NewSettingHandler(settingSvc)
	meHandler := handler.NewMeHandler(ledgerSvc, prefSvc, supervisionSvc, notifSvc)
	userHandler := handler.NewUserHandler(authMw.Client())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	auth := authMw.RequireAuth

	// Public catalog.
	api.GET("/servants", servantHandler.List)
	api.GET("/servants/:id", servantHandler.Get)
	api.GET("/servants/:id/obligations", obligationHandler.ListByServant)
	api.GET("/servants/:id/kpis", kpiHandler.ListByServant)
	api.GET("/servants/:id/punch-cards", punchHandler.ListByServant)
	api.GET("/servants/:id/transparency", servantHandler.Transparency)
	api.GET("/obligations/:id", obligationHandler.Get)
	api.GET("/obligations/:id/updates", obligationHandler.ListUpdates)
	api.GET("/kpis/:id", kpiHandler.Get)
	api.GET("/kpis/:id/updates", kpiHandler.ListUpdates)
	api.GET("/rewards", rewardHandler.List)
	api.GET("/rewards/:id", rewardHandler.Get)
	api.GET("/settings/public", settingHandler.ListPublic)
	api.GET("/users/:uid/public", userHandler.GetPublic)

	// Signed-in citizen surface.
	api.GET("/me", meHandler.Get, auth)
	api.GET("/me/points", pointsHandler.Get, auth)
	api.GET("/me/points/transactions", pointsHandler.ListTransactions, auth)
	api.GET("/me/notifications", notifHandler.ListUnread, auth)
	api.POST("/me/notifications/:id/read", notifHandler.MarkRead, auth)
	api.POST("/me/notifications/read-all", notifHandler.ClearAll, auth)
	api.GET("/me/preferences", prefHandler.Get, auth)
	api.PUT("/me/preferences", prefHandler.Update, auth)
	api.GET("/me/supervisions", supervisionHandler.ListMine, auth)
	api.GET("/me/redemptions", rewardHandler.MyRedemptions, auth)

	api.POST("/servants/:id/follow", supervisionHandler.Follow, auth, appmw.RequirePermission(rbac.PermCreateSupervision))
	api.DELETE("/servants/:id/follow", supervisionHandler.Unfollow, auth)
	api.POST("/obligations", obligationHandler.Create, auth, appmw.RequirePermission(rbac.PermCreateObligation))
	api.POST("/obligations/:id/status", obligationHandler.UpdateStatus, auth, appmw.RequirePermission(rbac.PermCreateObligation))
	api.POST("/obligations/:id/evidence", obligationHandler.UploadEvidence, auth, appmw.RequirePermission(rbac.PermCreateObligation))
	api.POST("/kpis", kpiHandler.Create, auth, appmw.RequirePermission(rbac.PermCreateKPI))
	api.POST("/kpis/:id/progress", kpiHandler.UpdateProgress, auth, appmw.RequirePermission(rbac.PermCreateKPI))
	api.POST("/rewards/:id/redeem", rewardHandler.Redeem, auth, appmw.RequirePermission(rbac.PermSpendPoints))
	api.POST("/redemptions/:id/cancel", rewardHandler.Cancel, auth)

	// Administration.
	api.POST("/servants", servantHandler.Create, auth, appmw.RequirePermission(rbac.PermManageCivilServants))
	api.PUT("/servants/:id", servantHandler.Update, auth, appmw.RequirePermission(rbac.PermManageCivilServants))
	api.POST("/servants/:id/punch-cards", punchHandler.Record, auth, appmw.RequirePermission(rbac.PermManageCivilServants))
	api.POST("/rewards", rewardHandler.Create, auth, appmw.RequirePermission(rbac.PermManageRewards))
	api.GET("/settings/:key", settingHandler.Get, auth, appmw.RequirePermission(rbac.PermManageSystemSettings))
	api.PUT("/settings", settingHandler.Set, auth, appmw.RequirePermission(rbac.PermManageSystemSettings))
	api.PUT("/users/:uid/role", userHandler.SetRole, auth, appmw.RequirePermission(rbac.PermManageUsers))

	return &Server{
		e:   e,
		log: log,
		repos: []interface{ SetDB(*gorm.DB) }{
			ledgerRepo, notifRepo, servantRepo, obligationRepo, kpiRepo,
			punchRepo, rewardRepo, supervisionRepo, prefRepo, settingRepo,
		},
		Obligations: obligationSvc,
		sha:         sha,
		build:       buildTime,
	}, nil
}

// allowOrigin admits localhost and the hosted frontend.
func allowOrigin(origin string) (bool, error) {
	low := strings.ToLower(origin)
	if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
		strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
		return true, nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false, nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, nil
	}
	if strings.HasSuffix(u.Hostname(), "vercel.app") {
		return true, nil
	}
	return false, nil
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// SetDB swaps the database handle on every repository, used after a
// reconnect.
func (s *Server) SetDB(db *gorm.DB) {
	for _, r := range s.repos {
		r.SetDB(db)
	}
}
