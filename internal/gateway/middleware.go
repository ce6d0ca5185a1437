package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"shareit/internal/dto"
	"shareit/internal/metrics"
)

const userIDKey = "user_id"

// requireUser rejects requests without a numeric identity header.
func (g *Gateway) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := strings.TrimSpace(c.Request().Header.Get(dto.UserIDHeader))
		if raw == "" {
			return badRequest(dto.UserIDHeader + " header is required")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return badRequest("invalid " + dto.UserIDHeader + " header")
		}
		c.Set(userIDKey, id)
		return next(c)
	}
}

// rateLimit keys on the identity header when present, else the client IP. Store errors let the request through.
func (g *Gateway) rateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.limiter == nil || g.cfg.RateLimit <= 0 {
				return next(c)
			}
			key := "ip:" + c.RealIP()
			if uid := strings.TrimSpace(c.Request().Header.Get(dto.UserIDHeader)); uid != "" {
				key = "user:" + uid
			}

			allowed, err := g.limiter.CheckRateLimit(c.Request().Context(), key, g.cfg.RateLimit, g.cfg.RateWindow)
			if err != nil {
				g.logger.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
				return next(c)
			}
			if !allowed {
				metrics.IncRateLimited()
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func (g *Gateway) accessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			dur := time.Since(start)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			metrics.ObserveHTTP("gateway", route, status, dur)

			g.logger.Info().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Dur("duration", dur).
				Str("ip", c.RealIP()).
				Msg("http request")
			return nil
		}
	}
}
