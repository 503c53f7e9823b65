package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/kardex"
	"github.com/jhoicas/kardex-api/internal/application/orders"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	productA    = "11111111-1111-1111-1111-111111111111"
	productB    = "11111111-1111-1111-1111-111111111112"
	warehouseID = "aaaaaaaa-0000-0000-0000-000000000001"
	clientID    = "cccccccc-0000-0000-0000-000000000001"
	staffID     = "99999999-0000-0000-0000-000000000001"
)

type fixture struct {
	store  *memory.Store
	poster *kardex.PostMovementUseCase
	uc     *orders.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedDefaultTypes()
	store.AddProduct(&entity.Product{ID: productA, SKU: "SKU-001", Name: "Café molido 500g", Price: d("50"), Active: true})
	store.AddProduct(&entity.Product{ID: productB, SKU: "SKU-002", Name: "Filtro de papel x100", Price: d("20"), Active: true})
	store.AddWarehouse(&entity.Warehouse{ID: warehouseID, Name: "Bodega Central", Active: true})

	typeRepo := memory.NewMovementTypeRepository(store)
	productRepo := memory.NewProductRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	orderRepo := memory.NewOrderRepository(store)

	poster := kardex.NewPostMovementUseCase(store, typeRepo, productRepo, warehouseRepo)
	uc := orders.NewUseCase(store, orderRepo, productRepo, warehouseRepo, typeRepo, poster)
	return &fixture{store: store, poster: poster, uc: uc}
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// stock siembra inventario del producto vía una compra aprobada.
func (f *fixture) stock(t *testing.T, productID, qty, cost string) {
	t.Helper()
	unitCost := d(cost)
	_, err := f.poster.Post(context.Background(), staffID, kardex.MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseID,
		TypeCode:          entity.TypeCompraIn,
		Quantity:          d(qty),
		UnitCost:          &unitCost,
		ReferenceDocument: "FAC-001",
	})
	require.NoError(t, err)
}

// pedido crea un pedido CON_APROBACION de una línea del producto A.
func (f *fixture) pedido(t *testing.T, qty, price string) *entity.Order {
	t.Helper()
	o, err := f.uc.Create(context.Background(), clientID, orders.CreateOrderInput{
		ClientID:    clientID,
		WarehouseID: warehouseID,
		OrderType:   entity.OrderTypeConAprobacion,
		Lines: []orders.CreateOrderLineInput{
			{ProductID: productA, Quantity: d(qty), UnitPrice: d(price)},
		},
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) saldo(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	bal, err := memory.NewBalanceRepository(f.store).Get(productID, warehouseID)
	require.NoError(t, err)
	return bal.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y totales
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_TotalesCalculadosEnServidor(t *testing.T) {
	f := newFixture(t)

	o, err := f.uc.Create(context.Background(), clientID, orders.CreateOrderInput{
		ClientID:    clientID,
		WarehouseID: warehouseID,
		OrderType:   entity.OrderTypeConAprobacion,
		Lines: []orders.CreateOrderLineInput{
			{ProductID: productA, Quantity: d("2"), UnitPrice: d("50"), Discount: d("10")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderPendiente, o.Status)
	assert.Contains(t, o.OrderNumber, "PED-")
	// subtotal 100, descuento 10, base 90, IGV 16.20, total 106.20
	assert.True(t, o.Subtotal.Equal(d("100")))
	assert.True(t, o.Discount.Equal(d("10")))
	assert.True(t, o.Tax.Equal(d("16.2")), "IGV esperado 16.20, got %s", o.Tax)
	assert.True(t, o.Total.Equal(d("106.2")))
	require.Len(t, o.Lines, 1)
	assert.True(t, o.Lines[0].LineSubtotal.Equal(d("90")))
}

func TestCreate_CompraDirectaNaceAprobada(t *testing.T) {
	f := newFixture(t)

	o, err := f.uc.Create(context.Background(), clientID, orders.CreateOrderInput{
		ClientID:    clientID,
		WarehouseID: warehouseID,
		OrderType:   entity.OrderTypeCompraDirecta,
		Lines: []orders.CreateOrderLineInput{
			{ProductID: productA, Quantity: d("1"), UnitPrice: d("50")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderAprobado, o.Status, "COMPRA_DIRECTA no espera aprobación de staff")

	// Puede pagarse de inmediato.
	paid, err := f.uc.MarkPaid(context.Background(), clientID, o.ID, entity.PaymentEfectivo, "")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPagado, paid.Status)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, clientID, orders.CreateOrderInput{
		ClientID: clientID, WarehouseID: warehouseID, OrderType: entity.OrderTypeConAprobacion,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "pedido sin líneas")

	_, err = f.uc.Create(ctx, clientID, orders.CreateOrderInput{
		ClientID: clientID, WarehouseID: "no-existe", OrderType: entity.OrderTypeConAprobacion,
		Lines: []orders.CreateOrderLineInput{{ProductID: productA, Quantity: d("1"), UnitPrice: d("50")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "bodega inexistente")

	_, err = f.uc.Create(ctx, clientID, orders.CreateOrderInput{
		ClientID: clientID, WarehouseID: warehouseID, OrderType: entity.OrderTypeConAprobacion,
		Lines: []orders.CreateOrderLineInput{{ProductID: "no-existe", Quantity: d("1"), UnitPrice: d("50")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto inexistente")

	_, err = f.uc.Create(ctx, clientID, orders.CreateOrderInput{
		ClientID: clientID, WarehouseID: warehouseID, OrderType: entity.OrderTypeConAprobacion,
		Lines: []orders.CreateOrderLineInput{{ProductID: productA, Quantity: d("0"), UnitPrice: d("50")}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "cantidad cero")

	_, err = f.uc.Create(ctx, clientID, orders.CreateOrderInput{
		ClientID: clientID, WarehouseID: warehouseID, OrderType: "INVENTADO",
		Lines: []orders.CreateOrderLineInput{{ProductID: productA, Quantity: d("1"), UnitPrice: d("50")}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "tipo de pedido desconocido")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida completo
// ──────────────────────────────────────────────────────────────────────────────

func TestCicloCompleto_PedidoHastaDespacho(t *testing.T) {
	f := newFixture(t)
	f.stock(t, productA, "10", "5")
	ctx := context.Background()

	o := f.pedido(t, "2", "50")

	o, err := f.uc.StartProcessing(ctx, staffID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderEnProceso, o.Status)

	o, err = f.uc.Approve(ctx, staffID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderAprobado, o.Status)
	require.NotNil(t, o.ApprovedBy)
	assert.Equal(t, staffID, *o.ApprovedBy)

	o, err = f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentYape, "OP-778899")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPagado, o.Status)
	assert.Equal(t, "OP-778899", o.PaymentProofRef)

	o, err = f.uc.ProcessShipment(ctx, staffID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderProcesado, o.Status)
	assert.NotNil(t, o.ShipmentDate)
	require.NotNil(t, o.ResultingSaleID)

	// La venta espeja los totales del pedido a precios congelados.
	sales := f.store.Sales()
	require.Len(t, sales, 1)
	sale := sales[0]
	assert.Equal(t, o.ID, sale.OrderID)
	assert.Equal(t, *o.ResultingSaleID, sale.ID)
	assert.Contains(t, sale.SaleNumber, "VEN-")
	assert.True(t, sale.Total.Equal(o.Total))
	require.Len(t, sale.Lines, 1)

	// El despacho descargó el stock vía un asiento VENTA_OUT al costo promedio.
	movs := f.store.MovementsByType(entity.TypeVentaOut)
	require.Len(t, movs, 1)
	assert.True(t, movs[0].Quantity.Equal(d("-2")))
	assert.True(t, movs[0].UnitCost.Equal(d("5")), "la salida asienta al costo promedio, no al precio de venta")
	assert.Equal(t, sale.SaleNumber, movs[0].ReferenceDocument)
	assert.True(t, f.saldo(t, productA).Equal(d("8")))
}

func TestShipment_ReintentoEsIdempotente(t *testing.T) {
	f := newFixture(t)
	f.stock(t, productA, "10", "5")
	ctx := context.Background()

	o := f.pedido(t, "2", "50")
	_, err := f.uc.Approve(ctx, staffID, o.ID)
	require.NoError(t, err)
	_, err = f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentEfectivo, "")
	require.NoError(t, err)

	first, err := f.uc.ProcessShipment(ctx, staffID, o.ID)
	require.NoError(t, err)
	second, err := f.uc.ProcessShipment(ctx, staffID, o.ID)
	require.NoError(t, err)

	assert.Equal(t, *first.ResultingSaleID, *second.ResultingSaleID,
		"el reintento devuelve la misma venta")
	assert.Len(t, f.store.Sales(), 1, "sin venta duplicada")
	assert.Len(t, f.store.MovementsByType(entity.TypeVentaOut), 1, "sin asientos duplicados")
	assert.True(t, f.saldo(t, productA).Equal(d("8")), "el stock se descarga una sola vez")
}

func TestShipment_VariasLineasDescarganCadaProducto(t *testing.T) {
	f := newFixture(t)
	f.stock(t, productA, "10", "5")
	f.stock(t, productB, "8", "2")
	ctx := context.Background()

	o, err := f.uc.Create(ctx, clientID, orders.CreateOrderInput{
		ClientID:    clientID,
		WarehouseID: warehouseID,
		OrderType:   entity.OrderTypeConAprobacion,
		Lines: []orders.CreateOrderLineInput{
			{ProductID: productA, Quantity: d("2"), UnitPrice: d("50")},
			{ProductID: productB, Quantity: d("3"), UnitPrice: d("20")},
		},
	})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, staffID, o.ID)
	require.NoError(t, err)
	_, err = f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentEfectivo, "")
	require.NoError(t, err)

	shipped, err := f.uc.ProcessShipment(ctx, staffID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderProcesado, shipped.Status)

	// Un asiento VENTA_OUT por línea; cada saldo baja por su propia cantidad.
	movs := f.store.MovementsByType(entity.TypeVentaOut)
	require.Len(t, movs, 2)
	assert.True(t, f.saldo(t, productA).Equal(d("8")), "producto A: 10 - 2")
	assert.True(t, f.saldo(t, productB).Equal(d("5")), "producto B: 8 - 3")

	sales := f.store.Sales()
	require.Len(t, sales, 1)
	require.Len(t, sales[0].Lines, 2)
	assert.True(t, sales[0].Total.Equal(shipped.Total))
}

func TestShipment_StockInsuficienteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.stock(t, productA, "10", "5")
	f.stock(t, productB, "1", "2")
	ctx := context.Background()

	// La línea A alcanza; la B no. Nada debe quedar a medias.
	o, err := f.uc.Create(ctx, clientID, orders.CreateOrderInput{
		ClientID:    clientID,
		WarehouseID: warehouseID,
		OrderType:   entity.OrderTypeConAprobacion,
		Lines: []orders.CreateOrderLineInput{
			{ProductID: productA, Quantity: d("2"), UnitPrice: d("50")},
			{ProductID: productB, Quantity: d("5"), UnitPrice: d("20")},
		},
	})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, staffID, o.ID)
	require.NoError(t, err)
	_, err = f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentEfectivo, "")
	require.NoError(t, err)

	_, err = f.uc.ProcessShipment(ctx, staffID, o.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored, err := f.uc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPagado, stored.Status, "el pedido sigue PAGADO y es reintentable")
	assert.Nil(t, stored.ResultingSaleID)
	assert.Empty(t, f.store.Sales(), "la venta revierte junto con los asientos")
	assert.Empty(t, f.store.MovementsByType(entity.TypeVentaOut))
	assert.True(t, f.saldo(t, productA).Equal(d("10")), "ni siquiera la línea con stock se descarga")
}

func TestShipment_SoloDesdePagado(t *testing.T) {
	f := newFixture(t)
	f.stock(t, productA, "10", "5")
	o := f.pedido(t, "1", "50")

	_, err := f.uc.ProcessShipment(context.Background(), staffID, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "no se despacha un pedido sin pagar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Guardas de transición
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkPaid_Guardas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.pedido(t, "1", "50")

	// Antes de aprobar no hay pago.
	_, err := f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentEfectivo, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.Approve(ctx, staffID, o.ID)
	require.NoError(t, err)

	// Métodos tipo transferencia exigen comprobante.
	_, err = f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentYape, "")
	assert.ErrorIs(t, err, domain.ErrMissingProof)
	_, err = f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentTransferencia, "  ")
	assert.ErrorIs(t, err, domain.ErrMissingProof)

	// Método fuera del enum.
	_, err = f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentMethod("CHEQUE"), "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Efectivo no exige comprobante.
	paid, err := f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentEfectivo, "")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPagado, paid.Status)

	// Doble pago.
	_, err = f.uc.MarkPaid(ctx, clientID, o.ID, entity.PaymentEfectivo, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReject_MotivoObligatorioYTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.pedido(t, "1", "50")

	_, err := f.uc.Reject(ctx, staffID, o.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	rejected, err := f.uc.Reject(ctx, staffID, o.ID, "sin cupo de crédito")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderRechazado, rejected.Status)
	assert.Equal(t, "sin cupo de crédito", rejected.RejectionReason)

	// RECHAZADO es terminal.
	_, err = f.uc.Approve(ctx, staffID, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.uc.Cancel(ctx, clientID, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestApprove_SoloPedidosConAprobacion(t *testing.T) {
	f := newFixture(t)
	o, err := f.uc.Create(context.Background(), clientID, orders.CreateOrderInput{
		ClientID:    clientID,
		WarehouseID: warehouseID,
		OrderType:   entity.OrderTypeCompraDirecta,
		Lines:       []orders.CreateOrderLineInput{{ProductID: productA, Quantity: d("1"), UnitPrice: d("50")}},
	})
	require.NoError(t, err)

	_, err = f.uc.Approve(context.Background(), staffID, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "COMPRA_DIRECTA no pasa por aprobación")
}

func TestCancel_SoloAntesDelPago(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := f.pedido(t, "1", "50")
	cancelled, err := f.uc.Cancel(ctx, clientID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelado, cancelled.Status)

	// Tras el pago ya no hay cancelación.
	o2 := f.pedido(t, "1", "50")
	_, err = f.uc.Approve(ctx, staffID, o2.ID)
	require.NoError(t, err)
	_, err = f.uc.MarkPaid(ctx, clientID, o2.ID, entity.PaymentEfectivo, "")
	require.NoError(t, err)
	_, err = f.uc.Cancel(ctx, clientID, o2.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTransiciones_PedidoInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Approve(context.Background(), staffID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
