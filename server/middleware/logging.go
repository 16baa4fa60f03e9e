package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/roomtable/server/internal/observability"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = echo.HeaderXRequestID

// RequestLogger attaches a RequestContext to each request, echoes its ID
// in the response, logs the outcome and records it in metrics.
func RequestLogger(logger *slog.Logger, metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			var rc *observability.RequestContext
			if id := req.Header.Get(HeaderRequestID); id != "" {
				rc = observability.NewRequestContextWithID(logger, id, req.Method, req.URL.Path)
			} else {
				rc = observability.NewRequestContext(logger, req.Method, req.URL.Path)
			}
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), rc)))
			c.Response().Header().Set(HeaderRequestID, rc.RequestID)

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			status := c.Response().Status
			attrs := []slog.Attr{
				slog.Int(observability.LogFieldStatus, status),
				slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
				slog.String(observability.LogFieldRemoteIP, c.RealIP()),
			}
			switch {
			case status >= 500:
				if err != nil {
					rc.Error("request failed", err, attrs...)
				} else {
					rc.Warn("request failed", attrs...)
				}
			case status >= 400:
				rc.Warn("request rejected", attrs...)
			default:
				rc.Debug("request handled", attrs...)
			}

			if metrics != nil {
				route := c.Path()
				if route == "" {
					route = req.URL.Path
				}
				metrics.RecordRequest(route, status, rc.Duration())
			}
			return nil
		}
	}
}
