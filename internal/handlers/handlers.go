package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/linyuhsin/bookshop/internal/logging"
	"github.com/linyuhsin/bookshop/internal/mykafka"
)

type Response struct {
	Message string `json:"message"`
}

func message(c echo.Context, code int, msg string) error {
	return c.JSON(code, Response{Message: msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// publish sends an event best-effort: a broker failure is logged and never
// fails the request.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).With("topic", topic).Error("kafka publish error", "error", err)
	}
}
