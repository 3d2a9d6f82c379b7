package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/warehouse-stock-allocation/internal/repository"
)

// StockHandler serves the read-only stock surfaces: the movement audit
// trail and the on-hand/reserved inventory view.  Both are cache-
// friendly and mounted behind the Redis response cache.
type StockHandler struct {
	Movements *repository.MovementRepo
	Inventory *repository.InventoryRepo
}

func NewStockHandler(movements *repository.MovementRepo, inventory *repository.InventoryRepo) *StockHandler {
	if movements == nil || inventory == nil {
		panic("nil repository passed to NewStockHandler")
	}
	return &StockHandler{Movements: movements, Inventory: inventory}
}

// ListMovements handles GET /v1/movements?sku=&limit= — newest first.
func (h *StockHandler) ListMovements(c echo.Context) error {
	sku := c.QueryParam("sku")
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	moves, err := h.Movements.List(c.Request().Context(), sku, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movements"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": moves})
}

// ListInventory handles GET /v1/inventory?sku= — every inventory row
// of the SKU with quantity, reserved quantity and derived availability.
func (h *StockHandler) ListInventory(c echo.Context) error {
	items, err := h.Inventory.ListBySKU(c.Request().Context(), c.QueryParam("sku"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load inventory"})
	}
	type row struct {
		ID        uint64  `json:"id"`
		SKU       string  `json:"sku"`
		Location  string  `json:"location"`
		Lot       *string `json:"lot,omitempty"`
		UOM       string  `json:"uom"`
		Quantity  float64 `json:"quantity"`
		Reserved  float64 `json:"reserved_qty"`
		Available float64 `json:"available"`
	}
	out := make([]row, 0, len(items))
	var totalQty, totalReserved float64
	for _, it := range items {
		out = append(out, row{
			ID:        it.ID,
			SKU:       it.SKU,
			Location:  it.Location,
			Lot:       it.Lot,
			UOM:       it.UOM,
			Quantity:  it.Quantity,
			Reserved:  it.ReservedQty,
			Available: it.Available(),
		})
		totalQty += it.Quantity
		totalReserved += it.ReservedQty
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":          out,
		"total_quantity": totalQty,
		"total_reserved": totalReserved,
	})
}

// CreateInventory handles POST /v1/inventory — receipt of loose stock
// straight into a location.  Accumulates when a row for the same
// (sku, location, lot) already exists.
func (h *StockHandler) CreateInventory(c echo.Context) error {
	var req struct {
		SKU      string  `json:"sku"`
		Location string  `json:"location"`
		Lot      *string `json:"lot"`
		UOM      string  `json:"uom"`
		Quantity float64 `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SKU == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku and location are required"})
	}
	if req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}
	uom := req.UOM
	if uom == "" {
		uom = "EA"
	}
	ctx := c.Request().Context()
	tx, err := h.Inventory.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Inventory.UpsertAddTx(ctx, tx, req.SKU, req.Location, req.Lot, uom, req.Quantity); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add inventory"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	items, err := h.Inventory.ListBySKU(ctx, req.SKU)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load inventory"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"items": items})
}
