package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
	"github.com/iliyamo/warehouse-stock-allocation/internal/repository"
)

// OrderHandler exposes order intake and lookup.  Orders are the input
// to allocation; they carry lines but no picking state of their own.
type OrderHandler struct {
	Orders *repository.OrderRepo
}

func NewOrderHandler(orders *repository.OrderRepo) *OrderHandler {
	if orders == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders}
}

type orderLineRequest struct {
	SKU      string  `json:"sku"`
	Quantity float64 `json:"quantity"`
	UOM      string  `json:"uom"`
	Lot      *string `json:"lot"`
}

type createOrderRequest struct {
	Number   string             `json:"number"`
	Customer string             `json:"customer"`
	Lines    []orderLineRequest `json:"lines"`
}

// Create handles POST /v1/orders.  Every line needs a SKU and a
// positive quantity; UOM defaults to EA.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Number == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number is required"})
	}
	if len(req.Lines) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one line is required"})
	}
	lines := make([]model.OrderLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		if l.SKU == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "line sku is required"})
		}
		if l.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "line quantity must be positive"})
		}
		uom := l.UOM
		if uom == "" {
			uom = "EA"
		}
		lines = append(lines, model.OrderLine{
			SKU:      l.SKU,
			Quantity: l.Quantity,
			UOM:      uom,
			Lot:      l.Lot,
		})
	}

	order := model.Order{Number: req.Number, Customer: req.Customer}
	created, err := h.Orders.Create(c.Request().Context(), &order, lines)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"order": order, "lines": created})
}

// Get handles GET /v1/orders/:id and returns the order with its lines.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()
	order, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	lines, err := h.Orders.LinesByOrder(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order lines"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order, "lines": lines})
}
