package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
	"github.com/iliyamo/warehouse-stock-allocation/internal/repository"
)

// TransformationHandler records irreversible batch splits and
// conversions.  Quantity conservation is enforced here, at write time:
// result plus waste may never exceed the source quantity, and the
// source batch's current quantity may never go negative.
type TransformationHandler struct {
	Batches         *repository.BatchRepo
	Transformations *repository.TransformationRepo
}

func NewTransformationHandler(batches *repository.BatchRepo, transformations *repository.TransformationRepo) *TransformationHandler {
	if batches == nil || transformations == nil {
		panic("nil repository passed to NewTransformationHandler")
	}
	return &TransformationHandler{Batches: batches, Transformations: transformations}
}

type createTransformationRequest struct {
	Type           string  `json:"type"`
	SourceBatchID  uint64  `json:"source_batch_id"`
	SourceQuantity float64 `json:"source_quantity"`
	ResultBatchID  *uint64 `json:"result_batch_id"`
	ResultQuantity float64 `json:"result_quantity"`
	WasteQuantity  float64 `json:"waste_quantity"`
	OrderRef       *string `json:"order_ref"`
	Notes          *string `json:"notes"`
}

// Create handles POST /v1/transformations.  In one transaction it
// inserts the ledger row, draws the source quantity down from the
// source batch (recomputing its status) and, when the result batch is
// already known, links it back to the transformation and its source.
func (h *TransformationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTransformationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidTransformationType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be CUT, REPACK or CONVERT"})
	}
	if req.SourceBatchID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source_batch_id is required"})
	}
	if req.SourceQuantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source_quantity must be positive"})
	}
	if req.ResultQuantity < 0 || req.WasteQuantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "result_quantity and waste_quantity must not be negative"})
	}
	if req.ResultQuantity+req.WasteQuantity > req.SourceQuantity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "result_quantity plus waste_quantity exceeds source_quantity"})
	}
	if req.ResultBatchID != nil && *req.ResultBatchID == req.SourceBatchID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "result batch cannot be the source batch"})
	}

	ctx := c.Request().Context()
	tx, err := h.Batches.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	source, err := h.Batches.GetByIDForUpdateTx(ctx, tx, req.SourceBatchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "source batch not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if req.SourceQuantity > source.CurrentQuantity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source_quantity exceeds the batch's current quantity"})
	}

	t := model.Transformation{
		Type:           req.Type,
		SourceBatchID:  source.ID,
		SourceQuantity: req.SourceQuantity,
		ResultBatchID:  req.ResultBatchID,
		ResultQuantity: req.ResultQuantity,
		WasteQuantity:  req.WasteQuantity,
		OrderRef:       req.OrderRef,
		PerformedBy:    userID,
		Notes:          req.Notes,
	}
	if err := h.Transformations.CreateTx(ctx, tx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create transformation"})
	}
	if err := h.Batches.UpdateQuantityTx(ctx, tx, source.ID, source.InitialQuantity, source.CurrentQuantity-req.SourceQuantity); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update source batch"})
	}
	if req.ResultBatchID != nil {
		if _, err := h.Batches.GetByIDForUpdateTx(ctx, tx, *req.ResultBatchID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "result batch not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if err := h.Batches.LinkOriginTx(ctx, tx, *req.ResultBatchID, t.ID, source.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to link result batch"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{"transformation": t})
}

// Get handles GET /v1/transformations/:id.
func (h *TransformationHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid transformation id"})
	}
	t, err := h.Transformations.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transformation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transformation": t})
}

type setResultRequest struct {
	ResultBatchID  uint64  `json:"result_batch_id"`
	ResultQuantity float64 `json:"result_quantity"`
	Notes          *string `json:"notes"`
}

// SetResult handles POST /v1/transformations/:id/result.  Attaching a
// result is single-use: once a result batch is linked the ledger row
// is immutable and a second call gets a conflict.  When no waste was
// recorded at creation time it is derived as source minus result;
// either way the pair is re-checked so result plus waste never exceeds
// the source quantity.
func (h *TransformationHandler) SetResult(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid transformation id"})
	}
	var req setResultRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ResultBatchID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "result_batch_id is required"})
	}
	if req.ResultQuantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "result_quantity must be positive"})
	}

	ctx := c.Request().Context()
	tx, err := h.Batches.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := h.Transformations.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transformation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if t.ResultBatchID != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "transformation already has a result batch"})
	}
	if req.ResultBatchID == t.SourceBatchID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "result batch cannot be the source batch"})
	}
	waste, ok := model.ResultWaste(t.SourceQuantity, t.WasteQuantity, req.ResultQuantity)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "result_quantity plus waste_quantity exceeds source_quantity"})
	}
	if _, err := h.Batches.GetByIDForUpdateTx(ctx, tx, req.ResultBatchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "result batch not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	notes := req.Notes
	if notes == nil {
		notes = t.Notes
	}
	if err := h.Transformations.SetResultTx(ctx, tx, id, req.ResultBatchID, req.ResultQuantity, waste, notes); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to set transformation result"})
	}
	if err := h.Batches.LinkOriginTx(ctx, tx, req.ResultBatchID, id, t.SourceBatchID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to link result batch"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	t, err = h.Transformations.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transformation": t})
}
