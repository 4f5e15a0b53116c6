package libraries

import (
	"github.com/labstack/echo/v4"
	"github.com/lumierephotos/lumiere/pkg/jobs"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, jobService *jobs.Service) *Service {
	libraryService := NewService(db)

	h := &handler{
		libraryService: libraryService,
		jobService:     jobService,
	}

	e.POST("/libraries", h.create)
	e.GET("/libraries/:id", h.retrieve)
	e.GET("/libraries", h.list)
	e.POST("/libraries/:id", h.update)
	e.DELETE("/libraries/:id", h.delete)
	e.GET("/libraries/:id/statistics", h.statistics)
	e.POST("/libraries/:id/scan", h.scan)
	e.POST("/libraries/:id/remove-offline", h.removeOffline)

	return libraryService
}
