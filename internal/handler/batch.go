package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
	"github.com/iliyamo/warehouse-stock-allocation/internal/repository"
	"github.com/iliyamo/warehouse-stock-allocation/internal/selection"
)

// BatchHandler exposes the batch store: receipt of new batches, batch
// selection for a required quantity, and the one-hop lineage tree.
type BatchHandler struct {
	Batches         *repository.BatchRepo
	Transformations *repository.TransformationRepo
}

func NewBatchHandler(batches *repository.BatchRepo, transformations *repository.TransformationRepo) *BatchHandler {
	if batches == nil || transformations == nil {
		panic("nil repository passed to NewBatchHandler")
	}
	return &BatchHandler{Batches: batches, Transformations: transformations}
}

type createBatchRequest struct {
	SKU             string  `json:"sku"`
	UOM             string  `json:"uom"`
	InitialQuantity float64 `json:"initial_quantity"`
	Location        string  `json:"location"`
	ReceivedAt      *string `json:"received_at"`
}

// Create handles POST /v1/batches — goods receipt.  A new batch starts
// INTACT with current quantity equal to initial quantity.
func (h *BatchHandler) Create(c echo.Context) error {
	var req createBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SKU == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku and location are required"})
	}
	if req.InitialQuantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "initial_quantity must be positive"})
	}
	uom := req.UOM
	if uom == "" {
		uom = "EA"
	}
	b := model.Batch{
		SKU:             req.SKU,
		UOM:             uom,
		InitialQuantity: req.InitialQuantity,
		CurrentQuantity: req.InitialQuantity,
		Location:        req.Location,
	}
	if req.ReceivedAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ReceivedAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "received_at must be RFC 3339"})
		}
		b.ReceivedAt = t.UTC()
	}
	if err := h.Batches.Create(c.Request().Context(), &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create batch"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"batch": b})
}

// Get handles GET /v1/batches/:id.
func (h *BatchHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch id"})
	}
	b, err := h.Batches.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "batch not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"batch": b})
}

type selectBatchRequest struct {
	SKU               string  `json:"sku"`
	RequiredQuantity  float64 `json:"required_quantity"`
	Strategy          string  `json:"strategy"`
	PreferredLocation string  `json:"preferred_location"`
}

// Select handles POST /v1/batches/select.  It runs the configured
// strategy over a snapshot of the SKU's eligible batches and returns
// the selected batch with up to five ranked alternatives.  Selection
// takes no locks; a caller acting on the result must lock the batch
// in its own transaction.
func (h *BatchHandler) Select(c echo.Context) error {
	var req selectBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku is required"})
	}
	if req.RequiredQuantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "required_quantity must be positive"})
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = selection.FIFO
	}
	if !selection.ValidStrategy(strategy) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown strategy " + strategy})
	}
	batches, err := h.Batches.EligibleBySKU(c.Request().Context(), req.SKU)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	result, ok := selection.Select(batches, req.RequiredQuantity, strategy, req.PreferredLocation)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no eligible batch for sku " + req.SKU})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"selected":     result.Selected,
		"alternatives": result.Alternatives,
	})
}

// Tree handles GET /v1/batches/:id/tree — one level of the lineage
// graph: the batch itself, the transformations it sourced, and the
// batches produced from it.
func (h *BatchHandler) Tree(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch id"})
	}
	ctx := c.Request().Context()
	b, err := h.Batches.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "batch not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	transformations, err := h.Transformations.BySourceBatch(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	children, err := h.Batches.ChildrenOf(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	tree := model.TransformationTree{
		Batch:           b,
		Transformations: transformations,
		Children:        children,
	}
	return c.JSON(http.StatusOK, tree)
}
