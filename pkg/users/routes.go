package users

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all user routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	users := e.Group("/users")

	users.GET("", h.list)
	users.GET("/:id", h.retrieve)
	users.POST("", h.create)
	users.POST("/:id", h.update)
	users.DELETE("/:id", h.deactivate)

	return userService
}
