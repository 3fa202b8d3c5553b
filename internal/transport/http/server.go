// Package http provides the HTTP server for Lumora.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/akshatyadav31/Lumora-Ai/internal/service"
	v1 "github.com/akshatyadav31/Lumora-Ai/internal/transport/http/v1"
	"github.com/akshatyadav31/Lumora-Ai/internal/transport/ws"
)

// Options configure the server.
type Options struct {
	AllowOrigins   []string
	MaxUploadBytes int64
	// Gatherer backs GET /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
	// Socket backs GET /v1/ws. Nil leaves the route out.
	Socket *ws.Server
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *service.Service, opts Options, log logrus.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(opts.AllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: opts.AllowOrigins}))
	} else {
		e.Use(middleware.CORS())
	}

	// Handlers
	v1Handler := v1.NewHandler(svc, opts.MaxUploadBytes, log)
	v1Handler.RegisterRoutes(e)

	if opts.Socket != nil {
		e.GET("/v1/ws", opts.Socket.HandleWebSocket)
	}
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	return e
}
