package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/warehouse-stock-allocation/internal/handler"
	"github.com/iliyamo/warehouse-stock-allocation/internal/middleware"
)

// RegisterStock registers the read-only stock surfaces.  The movement
// history and inventory views are hot read paths, so the Redis response
// cache wraps them when a cache middleware is supplied.
func RegisterStock(e *echo.Echo, s *handler.StockHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("WORKER", "SUPERVISOR"),
	)
	if cache != nil {
		g.GET("/movements", s.ListMovements, cache)
		g.GET("/inventory", s.ListInventory, cache)
	} else {
		g.GET("/movements", s.ListMovements)
		g.GET("/inventory", s.ListInventory)
	}

	sup := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("SUPERVISOR"),
	)
	sup.POST("/inventory", s.CreateInventory)
}
