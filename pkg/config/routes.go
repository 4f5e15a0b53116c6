package config

import (
	"context"

	"github.com/labstack/echo/v4"
)

// GeodataReloader rebuilds the reverse-geocoding index after the geodata
// path changes. The worker implements this.
type GeodataReloader interface {
	ReloadGeodata(ctx context.Context) error
}

func RegisterRoutes(e *echo.Echo, configService *Service, reloader GeodataReloader) {
	h := &handler{configService: configService, reloader: reloader}

	e.GET("/config", h.retrieve)
	e.POST("/config", h.update)
}
