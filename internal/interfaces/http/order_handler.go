package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/orders"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// OrderHandler maneja las peticiones HTTP del ciclo de vida de pedidos.
type OrderHandler struct {
	uc *orders.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Crea un pedido CON_APROBACION (nace PENDIENTE) o COMPRA_DIRECTA
//
//	(nace APROBADO). Los totales los calcula el servidor.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "client_id, warehouse_id, order_type, lines"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	// Un cliente solo puede crear pedidos a su nombre.
	if GetRole(c) == RoleCliente && in.ClientID != GetUserID(c) {
		return respondError(c, domain.ErrForbidden)
	}
	o, err := h.uc.Create(c.Context(), GetUserID(c), in.ToInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrder(o))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        client_id  query  string  false  "Filtrar por cliente (staff; un cliente siempre ve solo los suyos)"
// @Param        status     query  string  false  "Filtrar por estado"
// @Param        limit      query  int     false  "Límite de página (default 50)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	f := repository.OrderFilter{
		ClientID: c.Query("client_id"),
		Status:   entity.OrderStatus(c.Query("status")),
		Limit:    c.QueryInt("limit"),
		Offset:   c.QueryInt("offset"),
	}
	if GetRole(c) == RoleCliente {
		f.ClientID = GetUserID(c)
	}
	os, err := h.uc.List(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrders(os))
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if GetRole(c) == RoleCliente && o.ClientID != GetUserID(c) {
		return respondError(c, domain.ErrForbidden)
	}
	return c.JSON(dto.FromOrder(o))
}

// StartProcessing godoc
// @Summary      Tomar pedido para revisión
// @Description  PENDIENTE a EN_PROCESO. Solo staff.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/process [post]
func (h *OrderHandler) StartProcessing(c *fiber.Ctx) error {
	o, err := h.uc.StartProcessing(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Approve godoc
// @Summary      Aprobar pedido
// @Description  PENDIENTE o EN_PROCESO a APROBADO. Solo pedidos CON_APROBACION.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/approve [post]
func (h *OrderHandler) Approve(c *fiber.Ctx) error {
	o, err := h.uc.Approve(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Reject godoc
// @Summary      Rechazar pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Pedido"
// @Param        body  body  dto.RejectOrderRequest  true  "Motivo del rechazo"
// @Success      200  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/reject [post]
func (h *OrderHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	o, err := h.uc.Reject(c.Context(), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Pay godoc
// @Summary      Registrar pago de pedido
// @Description  APROBADO a PAGADO. TRANSFERENCIA, YAPE y PLIN exigen
//
//	referencia de comprobante. El dueño del pedido o staff.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Pedido"
// @Param        body  body  dto.PayOrderRequest  true  "payment_method y comprobante"
// @Success      200  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/pay [post]
func (h *OrderHandler) Pay(c *fiber.Ctx) error {
	var in dto.PayOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	if GetRole(c) == RoleCliente {
		existing, err := h.uc.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		if existing.ClientID != GetUserID(c) {
			return respondError(c, domain.ErrForbidden)
		}
	}
	o, err := h.uc.MarkPaid(c.Context(), GetUserID(c), c.Params("id"), entity.PaymentMethod(in.PaymentMethod), in.ProofRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Ship godoc
// @Summary      Despachar pedido
// @Description  PAGADO a PROCESADO: genera la venta y descarga el stock de
//
//	todas las líneas en una sola transacción, o nada si alguna falla.
//	Reintentar un pedido ya despachado devuelve la misma venta.
//
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/ship [post]
func (h *OrderHandler) Ship(c *fiber.Ctx) error {
	o, err := h.uc.ProcessShipment(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Cancel godoc
// @Summary      Cancelar pedido
// @Description  Permitido antes del pago. El dueño del pedido o staff.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	if GetRole(c) == RoleCliente {
		o, err := h.uc.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		if o.ClientID != GetUserID(c) {
			return respondError(c, domain.ErrForbidden)
		}
	}
	o, err := h.uc.Cancel(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}
