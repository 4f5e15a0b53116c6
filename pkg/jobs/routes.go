package jobs

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// ScanQueuer enqueues scan jobs for every external library. The worker
// implements this; the handler only needs the fan-out entry point.
type ScanQueuer interface {
	QueueAllScans(ctx context.Context, force bool) error
}

func RegisterRoutes(e *echo.Echo, db *bun.DB, queuer ScanQueuer) *Service {
	jobService := NewService(db)

	h := &handler{
		jobService: jobService,
		queuer:     queuer,
	}

	e.GET("/jobs", h.list)
	e.GET("/jobs/:id", h.retrieve)
	e.POST("/jobs/queue-all-scans", h.queueAllScans)

	return jobService
}
