package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/roomtable/internal/profile"
	"github.com/hrygo/roomtable/server/internal/observability"
	"github.com/hrygo/roomtable/server/middleware"
	apiv1 "github.com/hrygo/roomtable/server/router/api/v1"
	"github.com/hrygo/roomtable/server/service/classroom"
	"github.com/hrygo/roomtable/store"
	"github.com/hrygo/roomtable/store/cache"
)

// DefaultCORSOrigin is allowed when no origins are configured.
const DefaultCORSOrigin = "http://localhost:5173"

const limiterPruneInterval = time.Minute

type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Metrics *observability.Metrics

	echoServer *echo.Echo
	cache      *cache.Cache
	limiter    *middleware.RateLimiter
	logger     *slog.Logger
}

func NewServer(_ context.Context, profile *profile.Profile, store *store.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Profile: profile,
		Store:   store,
		Metrics: observability.NewMetrics(),
		cache: cache.New(cache.Config{
			DefaultTTL:      classroom.DefaultCacheTTL,
			CleanupInterval: time.Minute,
			MaxItems:        1024,
		}),
		logger: logger,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.JSONSerializer = newSonicSerializer()
	echoServer.HTTPErrorHandler = apiv1.HTTPErrorHandler
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(middleware.RequestLogger(logger, s.Metrics))
	echoServer.Use(echomiddleware.CORSWithConfig(corsConfig(profile.CORSOrigins)))
	s.echoServer = echoServer

	var apiMiddlewares []echo.MiddlewareFunc
	if profile.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(profile.RateLimit, profile.RateBurst)
		apiMiddlewares = append(apiMiddlewares, middleware.RateLimit(s.limiter))
	}

	classroomService := classroom.NewService(store, s.cache)
	apiV1Service := apiv1.NewAPIV1Service(profile, store, classroomService, s.Metrics)
	apiV1Service.RegisterRoutes(echoServer, apiMiddlewares...)

	if profile.Public != "" {
		info, err := os.Stat(profile.Public)
		switch {
		case err != nil:
			logger.Warn("static files disabled", slog.String("public", profile.Public), slog.String("error", err.Error()))
		case !info.IsDir():
			s.cache.Close()
			return nil, errors.Errorf("public path %s is not a directory", profile.Public)
		default:
			echoServer.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
				Skipper: isAPIPath,
				Root:    profile.Public,
				Index:   "index.html",
			}))
		}
	}
	return s, nil
}

func corsConfig(origins []string) echomiddleware.CORSConfig {
	if len(origins) == 0 {
		origins = []string{DefaultCORSOrigin}
	}
	wildcard := false
	for _, origin := range origins {
		if origin == "*" {
			wildcard = true
		}
	}
	return echomiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowCredentials: !wildcard,
	}
}

func isAPIPath(c echo.Context) bool {
	path := c.Request().URL.Path
	return strings.HasPrefix(path, "/api/") || path == "/healthz"
}

// ServeHTTP lets the server be mounted or exercised without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echoServer.ServeHTTP(w, r)
}

// Start listens until the server is shut down. It returns nil after a
// graceful Shutdown.
func (s *Server) Start(ctx context.Context) error {
	if s.limiter != nil {
		go s.pruneLimiter(ctx)
	}
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.logger.Info("server listening", slog.String("address", address), slog.String("mode", s.Profile.Mode))
	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Prune()
		}
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.logger.Info("server shutting down")
	defer s.cache.Close()
	if err := s.echoServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown server")
	}
	return nil
}
