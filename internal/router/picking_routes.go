package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/warehouse-stock-allocation/internal/handler"
	"github.com/iliyamo/warehouse-stock-allocation/internal/middleware"
)

// RegisterPicking registers the picking job lifecycle endpoints.
// Workers and supervisors can browse jobs, accept them, pick and
// complete; allocation and cancellation are supervisor actions.
func RegisterPicking(e *echo.Echo, h *handler.PickingHandler, o *handler.OrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("WORKER", "SUPERVISOR"),
	)
	g.GET("/picking-jobs", h.List)
	g.GET("/picking-jobs/:id", h.Get)
	g.POST("/picking-jobs/:id/accept", h.Accept)
	g.POST("/picking-jobs/:id/pick", h.Pick)
	g.POST("/picking-jobs/:id/complete", h.Complete)
	g.GET("/orders/:id", o.Get)

	sup := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("SUPERVISOR"),
	)
	sup.POST("/orders", o.Create)
	sup.POST("/orders/:id/allocate", h.Allocate)
	sup.POST("/picking-jobs/:id/cancel", h.Cancel)
}
