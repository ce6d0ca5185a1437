package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/dto"
)

// Gateway validates requests and forwards the valid ones to the server.
type Gateway struct {
	echo      *echo.Echo
	cfg       config.GatewayConfig
	client    *ServerClient
	validator *Validator
	limiter   domain.RateLimitRepository
	logger    *zerolog.Logger
}

// New wires routes. limiter may be nil to disable rate limiting.
func New(cfg config.GatewayConfig, client *ServerClient, limiter domain.RateLimitRepository, logger *zerolog.Logger) *Gateway {
	g := &Gateway{
		echo:      echo.New(),
		cfg:       cfg,
		client:    client,
		validator: NewValidator(),
		limiter:   limiter,
		logger:    logger,
	}
	e := g.echo
	e.HideBanner = true
	e.HidePort = true
	e.Validator = g.validator
	e.HTTPErrorHandler = g.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(g.accessLog())
	e.Use(g.rateLimit())

	e.GET("/items/search", g.searchItems)

	e.POST("/users", g.createUser)
	e.GET("/users", g.forward)
	e.GET("/users/:id", g.forward)
	e.PATCH("/users/:id", g.updateUser)
	e.DELETE("/users/:id", g.forward)

	withUser := g.requireUser
	e.POST("/bookings", g.createBooking, withUser)
	e.PATCH("/bookings/:id", g.changeBookingStatus, withUser)
	e.GET("/bookings/owner", g.listBookings, withUser)
	e.GET("/bookings/owner/export", g.forward, withUser)
	e.GET("/bookings/:id", g.forward, withUser)
	e.GET("/bookings", g.listBookings, withUser)

	e.POST("/items", g.createItem, withUser)
	e.PATCH("/items/:id", g.updateItem, withUser)
	e.GET("/items/:id", g.forward, withUser)
	e.GET("/items", g.paged, withUser)
	e.POST("/items/:id/comment", g.addComment, withUser)

	e.POST("/requests", g.createRequest, withUser)
	e.GET("/requests", g.forward, withUser)
	e.GET("/requests/all", g.paged, withUser)
	e.GET("/requests/:id", g.forward, withUser)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return g
}

// Handler exposes the routed echo instance.
func (g *Gateway) Handler() http.Handler {
	return g.echo
}

func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.cfg.Addr).Str("server", g.cfg.ServerURL).Msg("gateway listening")
	if err := g.echo.Start(g.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.echo.Shutdown(ctx)
}

// handleError renders every failure as {"error": msg}.
func (g *Gateway) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		g.logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("gateway request failed")
	}

	if err := c.JSON(code, dto.ErrorResponse{Error: msg}); err != nil {
		g.logger.Error().Err(err).Msg("write error response")
	}
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func (g *Gateway) requestTimeout() time.Duration {
	if g.cfg.RequestTimeout > 0 {
		return g.cfg.RequestTimeout
	}
	return 10 * time.Second
}
