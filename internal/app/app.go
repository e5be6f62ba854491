package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"batilink/internal/config"
	"batilink/internal/database"
	"batilink/internal/event"
	"batilink/internal/handler"
	"batilink/internal/middleware"
	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/internal/router"
	"batilink/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := slog.Default()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	accessRepo := repository.NewAccessRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	estimateRepo := repository.NewEstimateRepository(pool)
	invoiceRepo := repository.NewInvoiceRepository(pool)
	professionRepo := repository.NewProfessionRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	addressRepo := repository.NewAddressRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	slog.Info("database ready")

	bus := event.NewBus()

	tokenService := service.NewTokenService(tokenRepo, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, log)
	authService := service.NewAuthService(userRepo, tokenService, cfg.BcryptCost, log)
	userService := service.NewUserService(userRepo, cfg.BcryptCost, log)
	projectService := service.NewProjectService(projectRepo, taskRepo, bus, log)
	taskService := service.NewTaskService(taskRepo, projectRepo)
	estimateService := service.NewEstimateService(estimateRepo, projectRepo, bus, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, estimateRepo, projectRepo, bus)
	professionService := service.NewProfessionService(professionRepo)
	profileService := service.NewProfileService(profileRepo)
	addressService := service.NewAddressService(addressRepo)
	notificationService := service.NewNotificationService(notificationRepo, log)

	if err := bootstrapAdmin(context.Background(), cfg, userRepo, userService); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	dispatchCtx, dispatchCancel := context.WithCancel(context.Background())
	go notificationService.Dispatch(dispatchCtx, bus)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService, cfg.CookieSecure, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		User:         handler.NewUserHandler(userService),
		Project:      handler.NewProjectHandler(projectService),
		Task:         handler.NewTaskHandler(taskService),
		Estimate:     handler.NewEstimateHandler(estimateService),
		Invoice:      handler.NewInvoiceHandler(invoiceService),
		Profession:   handler.NewProfessionHandler(professionService),
		Profile:      handler.NewProfileHandler(profileService),
		Address:      handler.NewAddressHandler(addressService),
		Notification: handler.NewNotificationHandler(notificationService),
	}

	health := func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("degraded"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}

	appRouter := router.New(cfg, authMiddleware, accessRepo, handlers, health)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			dispatchCancel,
			db.Close,
		},
	}, nil
}

// bootstrapAdmin seeds the first administrator when the user table is
// empty and a bootstrap password is configured.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, users *repository.UserRepository, userService *service.UserService) error {
	if cfg.BootstrapAdminPassword == "" {
		return nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin, err := userService.Create(ctx, model.CreateUserRequest{
		Email:    cfg.BootstrapAdminEmail,
		Password: cfg.BootstrapAdminPassword,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return err
	}
	slog.Info("bootstrap admin created", "email", admin.Email)
	return nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
