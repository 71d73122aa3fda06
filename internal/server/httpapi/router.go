// Package httpapi is the public HTTP surface: share link downloads and
// image previews.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/rpc"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Storage is the part of services.StorageService the HTTP surface uses.
type Storage interface {
	Get(ctx context.Context, containerID, id string) (*models.File, error)
	DownloadLink(ctx context.Context, containerID, id string) (string, error)
	Preview(ctx context.Context, containerID, id string, width, height int) (*Preview, error)
}

// Pinger reports whether the metadata database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter builds the echo instance with all routes and middleware.
func NewRouter(h *Handler, logger logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))
	e.Use(requestLogger(logger))

	e.GET("/healthz", h.HandleHealth)
	e.GET(rpc.DownloadRoute, h.HandleDownload)
	e.GET(rpc.PreviewRoute, h.HandlePreview)
	e.GET("/share/:id", h.HandleShare)

	return e
}
