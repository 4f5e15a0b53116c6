package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lumierephotos/lumiere/pkg/binder"
	"github.com/lumierephotos/lumiere/pkg/config"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/filesystem"
	"github.com/lumierephotos/lumiere/pkg/joblogs"
	"github.com/lumierephotos/lumiere/pkg/jobs"
	"github.com/lumierephotos/lumiere/pkg/libraries"
	"github.com/lumierephotos/lumiere/pkg/users"
	"github.com/lumierephotos/lumiere/pkg/worker"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, wrkr *worker.Worker, configService *config.Service) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	jobService := jobs.RegisterRoutes(e, db, wrkr)
	joblogs.RegisterRoutes(e, db)
	libraries.RegisterRoutes(e, db, jobService)
	users.RegisterRoutes(e, db)
	config.RegisterRoutes(e, configService, wrkr)
	filesystem.RegisterRoutes(e)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
