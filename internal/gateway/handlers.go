package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"

	"shareit/internal/dto"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

// relayedHeaders are copied from the server response back to the caller.
var relayedHeaders = []string{"Content-Disposition", "Content-Length", "X-Request-Id"}

func (g *Gateway) createBooking(c echo.Context) error {
	return g.validated(c, &dto.BookingRequest{})
}

func (g *Gateway) changeBookingStatus(c echo.Context) error {
	if _, err := strconv.ParseBool(c.QueryParam("approved")); err != nil {
		return badRequest("approved must be true or false")
	}
	return g.forward(c)
}

func (g *Gateway) listBookings(c echo.Context) error {
	return g.paged(c)
}

func (g *Gateway) createItem(c echo.Context) error {
	return g.validated(c, &dto.ItemCreateRequest{})
}

func (g *Gateway) updateItem(c echo.Context) error {
	return g.validated(c, &dto.ItemUpdateRequest{})
}

func (g *Gateway) searchItems(c echo.Context) error {
	return g.paged(c)
}

func (g *Gateway) addComment(c echo.Context) error {
	return g.validated(c, &dto.CommentRequest{})
}

func (g *Gateway) createRequest(c echo.Context) error {
	return g.validated(c, &dto.ItemRequestCreateRequest{})
}

func (g *Gateway) createUser(c echo.Context) error {
	return g.validated(c, &dto.UserCreateRequest{})
}

func (g *Gateway) updateUser(c echo.Context) error {
	return g.validated(c, &dto.UserUpdateRequest{})
}

// paged checks from >= 0 and size > 0 when given, then forwards.
func (g *Gateway) paged(c echo.Context) error {
	if raw := c.QueryParam("from"); raw != "" {
		if from, err := strconv.Atoi(raw); err != nil || from < 0 {
			return badRequest("from must be a non-negative integer")
		}
	}
	if raw := c.QueryParam("size"); raw != "" {
		if size, err := strconv.Atoi(raw); err != nil || size <= 0 {
			return badRequest("size must be a positive integer")
		}
	}
	return g.forward(c)
}

// validated decodes the body into dst, validates it and forwards the original bytes.
func (g *Gateway) validated(c echo.Context, dst any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return badRequest("failed to read request body")
	}
	if len(body) == 0 {
		return badRequest("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return badRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if err := c.Validate(dst); err != nil {
		return badRequest(err.Error())
	}
	return g.forwardBody(c, body)
}

func (g *Gateway) forward(c echo.Context) error {
	return g.forwardBody(c, nil)
}

func (g *Gateway) forwardBody(c echo.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), g.requestTimeout())
	defer cancel()

	req := c.Request()
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		req.Header.Set(echo.HeaderXRequestID, id)
	}

	resp, err := g.client.Forward(ctx, req, body)
	if err != nil {
		g.logger.Error().Err(err).Str("path", req.URL.Path).Msg("server request failed")
		return echo.NewHTTPError(http.StatusBadGateway, "server unavailable")
	}
	defer resp.Body.Close()

	for _, h := range relayedHeaders {
		if v := resp.Header.Get(h); v != "" {
			c.Response().Header().Set(h, v)
		}
	}
	contentType := resp.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(resp.StatusCode, contentType, resp.Body)
}
