package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/kardex"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// KardexHandler maneja las peticiones HTTP del kardex (protegido, solo staff).
type KardexHandler struct {
	poster *kardex.PostMovementUseCase
	auth   *kardex.AuthorizationUseCase
	query  *kardex.LedgerQueryUseCase
}

// NewKardexHandler construye el handler.
func NewKardexHandler(poster *kardex.PostMovementUseCase, auth *kardex.AuthorizationUseCase, query *kardex.LedgerQueryUseCase) *KardexHandler {
	return &KardexHandler{poster: poster, auth: auth, query: query}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de kardex
// @Description  Registra una entrada, salida o traslado. Los tipos que requieren
//
//	autorización quedan PENDIENTE sin afectar stock hasta aprobarse.
//
// @Tags         kardex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, warehouse_id, type, quantity, unit_cost (entradas), to_warehouse_id (traslados)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/kardex/movements [post]
func (h *KardexHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	m, err := h.poster.Post(c.Context(), GetUserID(c), in.ToDraft())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(m))
}

// ListMovements godoc
// @Summary      Listar movimientos de kardex
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Filtrar por producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        type          query  string  false  "Filtrar por tipo (ej. COMPRA_IN)"
// @Param        status        query  string  false  "PENDIENTE, APROBADO o RECHAZADO"
// @Param        from          query  string  false  "Fecha inicial (RFC3339)"
// @Param        to            query  string  false  "Fecha final (RFC3339)"
// @Param        limit         query  int     false  "Límite de página (default 50)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex/movements [get]
func (h *KardexHandler) ListMovements(c *fiber.Ctx) error {
	f := repository.MovementFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		TypeCode:    c.Query("type"),
		Status:      entity.MovementStatus(c.Query("status")),
		Limit:       c.QueryInt("limit"),
		Offset:      c.QueryInt("offset"),
	}
	var err error
	if f.From, err = parseTimeQuery(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, use RFC3339"})
	}
	if f.To, err = parseTimeQuery(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, use RFC3339"})
	}
	ms, err := h.query.ListMovements(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromMovements(ms))
}

// GetLedger godoc
// @Summary      Kardex de un producto en una bodega
// @Description  Reconstruye el libro replayando asientos aprobados: saldo de
//
//	apertura, movimientos del rango, totales y saldo de cierre.
//
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        product_id    path   string  true   "Producto"
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        from          query  string  false  "Fecha inicial (RFC3339)"
// @Param        to            query  string  false  "Fecha final (RFC3339)"
// @Success      200  {object}  dto.LedgerResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/kardex/products/{product_id}/ledger [get]
func (h *KardexHandler) GetLedger(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id requerido"})
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, use RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, use RFC3339"})
	}
	res, err := h.query.GetLedger(c.Context(), productID, warehouseID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LedgerResponse{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		OpeningBalance: res.OpeningBalance,
		ClosingBalance: res.ClosingBalance,
		TotalIn:        res.TotalIn,
		TotalOut:       res.TotalOut,
		Movements:      dto.FromMovements(res.Movements),
	})
}

// ApproveMovement godoc
// @Summary      Aprobar movimiento pendiente
// @Description  Aplica el asiento al stock con los valores al momento de la
//
//	aprobación. Solo admin. La suficiencia de stock se revalida acá.
//
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/kardex/movements/{id}/approve [post]
func (h *KardexHandler) ApproveMovement(c *fiber.Ctx) error {
	m, err := h.auth.Approve(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromMovement(m))
}

// RejectMovement godoc
// @Summary      Rechazar movimiento pendiente
// @Tags         kardex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Movimiento"
// @Param        body  body  dto.RejectMovementRequest  true  "Motivo del rechazo"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/kardex/movements/{id}/reject [post]
func (h *KardexHandler) RejectMovement(c *fiber.Ctx) error {
	var in dto.RejectMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	m, err := h.auth.Reject(c.Context(), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromMovement(m))
}

// parseTimeQuery lee un query param RFC3339 opcional.
func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
