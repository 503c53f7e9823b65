package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// CatalogHandler expone el catálogo de referencia (productos, bodegas,
// tipos de movimiento) y el saldo vivo por producto/bodega.
type CatalogHandler struct {
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	typeRepo      repository.MovementTypeRepository
	balanceRepo   repository.BalanceRepository
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	typeRepo repository.MovementTypeRepository,
	balanceRepo repository.BalanceRepository,
) *CatalogHandler {
	return &CatalogHandler{
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		typeRepo:      typeRepo,
		balanceRepo:   balanceRepo,
	}
}

// ListProducts godoc
// @Summary      Listar productos
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite de página (default 50)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit")
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	ps, err := h.productRepo.List(limit, c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, dto.FromProduct(p))
	}
	return c.JSON(out)
}

// GetProduct godoc
// @Summary      Obtener producto
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.productRepo.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if p == nil {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(dto.FromProduct(p))
}

// ListWarehouses godoc
// @Summary      Listar bodegas
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.WarehouseResponse
// @Router       /api/warehouses [get]
func (h *CatalogHandler) ListWarehouses(c *fiber.Ctx) error {
	ws, err := h.warehouseRepo.List()
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.WarehouseResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, dto.FromWarehouse(w))
	}
	return c.JSON(out)
}

// ListMovementTypes godoc
// @Summary      Listar tipos de movimiento
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        all  query  bool  false  "Incluir tipos inactivos"
// @Success      200  {array}  dto.MovementTypeResponse
// @Router       /api/kardex/movement-types [get]
func (h *CatalogHandler) ListMovementTypes(c *fiber.Ctx) error {
	ts, err := h.typeRepo.List(!c.QueryBool("all"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementTypeResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, dto.FromMovementType(t))
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Saldo vivo de un producto en una bodega
// @Description  Lectura directa de la proyección de saldo. Si nunca hubo
//
//	movimientos devuelve cantidad y costo promedio en cero.
//
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true  "Producto"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.StockBalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/kardex/stock [get]
func (h *CatalogHandler) GetStock(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y warehouse_id requeridos"})
	}
	p, err := h.productRepo.GetByID(productID)
	if err != nil {
		return respondError(c, err)
	}
	if p == nil {
		return respondError(c, domain.ErrNotFound)
	}
	w, err := h.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	if w == nil {
		return respondError(c, domain.ErrNotFound)
	}
	b, err := h.balanceRepo.Get(productID, warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromBalance(b))
}
