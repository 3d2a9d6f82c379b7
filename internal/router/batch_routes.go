package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/warehouse-stock-allocation/internal/handler"
	"github.com/iliyamo/warehouse-stock-allocation/internal/middleware"
)

// RegisterBatches registers the batch store and transformation ledger
// endpoints.  Reading batches and running a selection is open to both
// roles; receipt and transformations are supervisor actions.
func RegisterBatches(e *echo.Echo, b *handler.BatchHandler, t *handler.TransformationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("WORKER", "SUPERVISOR"),
	)
	g.GET("/batches/:id", b.Get)
	g.GET("/batches/:id/tree", b.Tree)
	g.POST("/batches/select", b.Select)
	g.GET("/transformations/:id", t.Get)

	sup := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("SUPERVISOR"),
	)
	sup.POST("/batches", b.Create)
	sup.POST("/transformations", t.Create)
	sup.POST("/transformations/:id/result", t.SetResult)
}
