// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"bertron/internal/delivery/http/middleware"
	"bertron/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	EntityHandler       *handler.EntityHandler
	SystemHandler       *handler.SystemHandler
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	entityHandler       *handler.EntityHandler
	systemHandler       *handler.SystemHandler
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		entityHandler:       params.EntityHandler,
		systemHandler:       params.SystemHandler,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)

	// System endpoints
	e.GET("/health", r.systemHandler.Health)
	e.GET("/version", r.systemHandler.Version)

	// Entity query surface
	bertronGroup := e.Group("/bertron")
	{
		bertronGroup.GET("", r.entityHandler.GetAll)
		bertronGroup.POST("/find", r.entityHandler.Find)
		bertronGroup.GET("/geo/nearby", r.entityHandler.Nearby)
		bertronGroup.GET("/geo/bbox", r.entityHandler.BBox)
		bertronGroup.GET("/:id", r.entityHandler.GetByID)
	}
}
