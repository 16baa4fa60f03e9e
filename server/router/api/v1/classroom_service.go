package v1

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/roomtable/server/internal/errors"
	"github.com/hrygo/roomtable/server/internal/observability"
	"github.com/hrygo/roomtable/server/service/classroom"
)

// StatsResponse reports the loaded snapshot and request metrics.
type StatsResponse struct {
	Snapshot *classroom.Summary            `json:"snapshot"`
	Requests *observability.MetricsSnapshot `json:"requests"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// pathParam returns a decoded path parameter.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// GetRoom returns the ordered sessions of one room.
// GET /api/rooms/:room
func (s *APIV1Service) GetRoom(c echo.Context) error {
	sessions, err := s.ClassroomService.Room(c.Request().Context(), pathParam(c, "room"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessions)
}

// ListClassrooms returns rooms whose name starts with the room query
// parameter, ignoring case. Without it every room is listed.
// GET /api/classrooms?room=<prefix>
func (s *APIV1Service) ListClassrooms(c echo.Context) error {
	rooms, err := s.ClassroomService.Classrooms(c.Request().Context(), c.QueryParam("room"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rooms)
}

// ListBuilding returns rooms whose name starts with the building.
// GET /api/buildings/:building
func (s *APIV1Service) ListBuilding(c echo.Context) error {
	rooms, err := s.ClassroomService.Building(c.Request().Context(), pathParam(c, "building"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rooms)
}

// FilterSessions returns sessions matching a CEL expression.
// GET /api/sessions?filter=<expr>
func (s *APIV1Service) FilterSessions(c echo.Context) error {
	matches, err := s.ClassroomService.Filter(c.Request().Context(), c.QueryParam("filter"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, matches)
}

// GetStats describes the loaded snapshot.
// GET /api/stats
func (s *APIV1Service) GetStats(c echo.Context) error {
	summary, err := s.ClassroomService.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatsResponse{
		Snapshot: summary,
		Requests: s.Metrics.Snapshot(),
	})
}

// Reload replaces the snapshot from disk.
// POST /api/reload
func (s *APIV1Service) Reload(c echo.Context) error {
	ctx := c.Request().Context()
	if s.Store == nil {
		return apierrors.ServiceUnavailable("reload is not available")
	}
	start := time.Now()
	if _, err := s.Store.Reload(ctx); err != nil {
		return apierrors.Internal("reload failed", err)
	}
	if rc, ok := observability.FromContext(ctx); ok {
		rc.Info("room map reloaded", slog.Int64("reload_ms", time.Since(start).Milliseconds()))
	}

	summary, err := s.ClassroomService.Summary(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Healthz reports liveness.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if s.Profile != nil {
		resp.Version = s.Profile.Version
	}
	return c.JSON(http.StatusOK, resp)
}
