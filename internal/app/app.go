package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/instaloan/auth-service/internal/config"
	"github.com/instaloan/auth-service/internal/handler"
	"github.com/instaloan/auth-service/internal/repository"
	"github.com/instaloan/auth-service/internal/service"
	"github.com/instaloan/auth-service/internal/utils"
	"github.com/instaloan/auth-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra       Infrastructure
	config      *config.Config
	router      *gin.Engine
	server      *http.Server
	authService service.AuthService
}

// Option overrides a default collaborator, mainly for tests.
type Option func(*options)

type options struct {
	sender service.VerificationSender
}

// WithVerificationSender replaces the mail transport chosen from config.
func WithVerificationSender(sender service.VerificationSender) Option {
	return func(o *options) {
		o.sender = sender
	}
}

func NewApp(infra Infrastructure, cfg *config.Config, opts ...Option) *App {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.sender == nil {
		o.sender = newVerificationSender(cfg, infra.Logger())
	}

	repos := repository.NewRepositories(infra.Postgres(), infra.Redis())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
	)

	authService := service.NewAuthService(
		repos.User,
		repos.Session,
		repos.Verification,
		jwtManager,
		o.sender,
		infra.Logger(),
		cfg.Auth.BCryptCost,
		cfg.Auth.SessionTTL.Duration,
		cfg.Auth.VerificationTTL.Duration,
	)

	authHandler := handler.NewAuthHandler(authService, handler.CookieOptions{
		MaxAge:      cfg.Auth.SessionTTL.Duration,
		CrossOrigin: cfg.Auth.CookieCrossOrigin,
		Secure:      cfg.Auth.CookieSecure,
	})
	userHandler := handler.NewUserHandler(authService)
	healthChecker := NewHealthChecker(infra)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("auth-service"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, authHandler, userHandler, authService, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:       infra,
		config:      cfg,
		router:      router,
		server:      srv,
		authService: authService,
	}
}

// newVerificationSender picks the mail transport: Resend when an API key is
// configured, otherwise tokens are only logged.
func newVerificationSender(cfg *config.Config, logger *zap.Logger) service.VerificationSender {
	if cfg.Mail.ResendAPIKey != "" {
		return service.NewResendSender(cfg.Mail.ResendAPIKey, cfg.Mail.From, cfg.Mail.VerifyURL)
	}
	return service.NewLogSender(logger)
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	authService service.AuthService,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	auth := router.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/verify-email", authHandler.VerifyEmail)
	}

	users := router.Group("/users")
	{
		users.GET("/me", handler.AuthMiddleware(authService), userHandler.GetMe)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	if interval := a.config.Auth.SweepInterval.Duration; interval > 0 {
		go a.sweepSessions(ctx, interval)
	}

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

// sweepSessions periodically reaps expired session rows. Refresh already
// reaps lazily; this sweep only keeps the table from accumulating rows for
// devices that never came back.
func (a *App) sweepSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reaped, err := a.authService.SweepExpiredSessions(ctx)
			if err != nil {
				a.infra.Logger().Error("Session sweep failed", zap.Error(err))
				continue
			}
			if reaped > 0 {
				a.infra.Logger().Info("Session sweep", zap.Int64("reaped", reaped))
			}
		}
	}
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
