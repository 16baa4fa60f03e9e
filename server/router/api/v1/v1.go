package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/roomtable/internal/profile"
	apierrors "github.com/hrygo/roomtable/server/internal/errors"
	"github.com/hrygo/roomtable/server/internal/observability"
	"github.com/hrygo/roomtable/server/service/classroom"
	"github.com/hrygo/roomtable/store"
)

// Reloader replaces the current snapshot.
type Reloader interface {
	Reload(ctx context.Context) (*store.Snapshot, error)
}

type APIV1Service struct {
	Profile          *profile.Profile
	Store            Reloader
	ClassroomService classroom.Service
	Metrics          *observability.Metrics
}

func NewAPIV1Service(profile *profile.Profile, reloader Reloader, classroomService classroom.Service, metrics *observability.Metrics) *APIV1Service {
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &APIV1Service{
		Profile:          profile,
		Store:            reloader,
		ClassroomService: classroomService,
		Metrics:          metrics,
	}
}

// RegisterRoutes registers the API routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo, middlewares ...echo.MiddlewareFunc) {
	echoServer.GET("/healthz", s.Healthz)

	api := echoServer.Group("/api", middlewares...)
	api.GET("/rooms/:room", s.GetRoom)
	api.GET("/classrooms", s.ListClassrooms)
	api.GET("/buildings/:building", s.ListBuilding)
	api.GET("/sessions", s.FilterSessions)
	api.GET("/stats", s.GetStats)
	api.POST("/reload", s.Reload)
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

// HTTPErrorHandler renders errors as ErrorResponse with the status mapped
// from the error code. Unmatched routes are reported as NOT_FOUND.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
		err = apierrors.NotFound(fmt.Sprintf("%s not found", c.Request().URL.Path))
	}

	var (
		status int
		body   ErrorResponse
	)
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		body = ErrorResponse{Code: codeForStatus(he.Code), Message: http.StatusText(he.Code)}
		if msg, ok := he.Message.(string); ok && msg != "" {
			body.Message = msg
		}
	} else {
		apiErr := apierrors.As(err)
		status = apiErr.Code.HTTPStatus()
		body = ErrorResponse{Code: apiErr.Code, Message: apiErr.Message}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func codeForStatus(status int) apierrors.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed:
		return apierrors.ErrCodeInvalidArgument
	case http.StatusTooManyRequests:
		return apierrors.ErrCodeRateLimitExceeded
	case http.StatusServiceUnavailable:
		return apierrors.ErrCodeServiceUnavailable
	default:
		return apierrors.ErrCodeInternal
	}
}
