package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/kardex"
	"github.com/jhoicas/kardex-api/internal/application/orders"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PostMovement  *kardex.PostMovementUseCase
	Authorization *kardex.AuthorizationUseCase
	LedgerQuery   *kardex.LedgerQueryUseCase
	Orders        *orders.UseCase
	ProductRepo   repository.ProductRepository
	WarehouseRepo repository.WarehouseRepository
	TypeRepo      repository.MovementTypeRepository
	BalanceRepo   repository.BalanceRepository
	JWTSecret     string
}

// Router registra las rutas de la API. Todo va detrás del Bearer Token;
// el kardex es solo staff y la aprobación de movimientos solo admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	staff := RequireRole(RoleAdmin, RoleVendedor)

	// Catálogo (protegido, cualquier rol)
	catalogHandler := NewCatalogHandler(deps.ProductRepo, deps.WarehouseRepo, deps.TypeRepo, deps.BalanceRepo)
	products := api.Group("/products")
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)
	api.Get("/warehouses", staff, catalogHandler.ListWarehouses)

	// Kardex (solo staff; aprobar y rechazar solo admin)
	kardexGroup := api.Group("/kardex", staff)
	kardexHandler := NewKardexHandler(deps.PostMovement, deps.Authorization, deps.LedgerQuery)
	kardexGroup.Get("/movement-types", catalogHandler.ListMovementTypes)
	kardexGroup.Get("/stock", catalogHandler.GetStock)
	kardexGroup.Post("/movements", kardexHandler.RegisterMovement)
	kardexGroup.Get("/movements", kardexHandler.ListMovements)
	kardexGroup.Post("/movements/:id/approve", RequireRole(RoleAdmin), kardexHandler.ApproveMovement)
	kardexGroup.Post("/movements/:id/reject", RequireRole(RoleAdmin), kardexHandler.RejectMovement)
	kardexGroup.Get("/products/:product_id/ledger", kardexHandler.GetLedger)

	// Pedidos (clientes crean, consultan y cancelan los suyos; el resto
	// de transiciones son de staff)
	ordersGroup := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Post("/:id/process", staff, orderHandler.StartProcessing)
	ordersGroup.Post("/:id/approve", staff, orderHandler.Approve)
	ordersGroup.Post("/:id/reject", staff, orderHandler.Reject)
	ordersGroup.Post("/:id/pay", orderHandler.Pay)
	ordersGroup.Post("/:id/ship", staff, orderHandler.Ship)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)
}
