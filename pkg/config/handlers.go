package config

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	configService *Service
	reloader      GeodataReloader
}

func (h *handler) retrieve(c echo.Context) error {
	userConfig, err := h.configService.RetrieveUserConfig()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, userConfig))
}

func (h *handler) update(c echo.Context) error {
	params := UpdateConfigPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userConfig, err := h.configService.RetrieveUserConfig()
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateUserConfigOptions{}
	geodataChanged := false

	if params.SyncIntervalMinutes != nil && userConfig.SyncIntervalMinutes != *params.SyncIntervalMinutes {
		userConfig.SyncIntervalMinutes = *params.SyncIntervalMinutes
		opts.UpdateFile = true
	}
	if params.GeodataPath != nil && userConfig.GeodataPath != *params.GeodataPath {
		userConfig.GeodataPath = *params.GeodataPath
		opts.UpdateFile = true
		geodataChanged = true
	}

	if err := h.configService.UpdateUserConfig(userConfig, opts); err != nil {
		return errors.WithStack(err)
	}

	if geodataChanged && h.reloader != nil {
		log := logger.FromContext(c.Request().Context())
		// The reload pauses the metadata queue and re-checks the config
		// version itself, so it can run off the request path.
		go func() {
			if err := h.reloader.ReloadGeodata(log.WithContext(context.Background())); err != nil {
				log.Err(err).Error("geodata reload error")
			}
		}()
	}

	userConfig, err = h.configService.RetrieveUserConfig()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, userConfig))
}
