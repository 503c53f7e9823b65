package kardex_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/kardex"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	productID   = "11111111-1111-1111-1111-111111111111"
	warehouseA  = "aaaaaaaa-0000-0000-0000-000000000001"
	warehouseB  = "aaaaaaaa-0000-0000-0000-000000000002"
	staffUserID = "99999999-0000-0000-0000-000000000001"
	adminUserID = "99999999-0000-0000-0000-000000000002"
)

type fixture struct {
	store  *memory.Store
	poster *kardex.PostMovementUseCase
	auth   *kardex.AuthorizationUseCase
	query  *kardex.LedgerQueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedDefaultTypes()
	store.AddProduct(&entity.Product{ID: productID, SKU: "SKU-001", Name: "Café molido 500g", Active: true})
	store.AddWarehouse(&entity.Warehouse{ID: warehouseA, Name: "Bodega Central", Active: true})
	store.AddWarehouse(&entity.Warehouse{ID: warehouseB, Name: "Bodega Norte", Active: true})

	typeRepo := memory.NewMovementTypeRepository(store)
	productRepo := memory.NewProductRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	movRepo := memory.NewMovementRepository(store)

	return &fixture{
		store:  store,
		poster: kardex.NewPostMovementUseCase(store, typeRepo, productRepo, warehouseRepo),
		auth:   kardex.NewAuthorizationUseCase(store, typeRepo),
		query:  kardex.NewLedgerQueryUseCase(movRepo, productRepo, warehouseRepo),
	}
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// compra registra una entrada COMPRA_IN ya aprobada.
func (f *fixture) compra(t *testing.T, qty, cost string) *entity.StockMovement {
	t.Helper()
	unitCost := d(cost)
	m, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseA,
		TypeCode:          entity.TypeCompraIn,
		Quantity:          d(qty),
		UnitCost:          &unitCost,
		ReferenceDocument: "FAC-001",
	})
	require.NoError(t, err)
	return m
}

// venta registra una salida VENTA_OUT ya aprobada.
func (f *fixture) venta(t *testing.T, qty string) (*entity.StockMovement, error) {
	t.Helper()
	return f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseA,
		TypeCode:          entity.TypeVentaOut,
		Quantity:          d(qty),
		ReferenceDocument: "BOL-001",
	})
}

// saldo lee el saldo vivo del producto en la bodega indicada.
func (f *fixture) saldo(t *testing.T, warehouseID string) *entity.StockBalance {
	t.Helper()
	bal, err := memory.NewBalanceRepository(f.store).Get(productID, warehouseID)
	require.NoError(t, err)
	return bal
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas y promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestCompra_PrimeraEntradaCongelaCostos(t *testing.T) {
	f := newFixture(t)

	m := f.compra(t, "10", "5")

	assert.Equal(t, entity.MovementAprobado, m.Status)
	require.NotNil(t, m.StockBefore)
	require.NotNil(t, m.StockAfter)
	require.NotNil(t, m.UnitCost)
	require.NotNil(t, m.TotalCost)
	assert.True(t, m.StockBefore.IsZero(), "saldo inicial debe ser cero")
	assert.True(t, m.StockAfter.Equal(d("10")))
	assert.True(t, m.UnitCost.Equal(d("5")))
	assert.True(t, m.TotalCost.Equal(d("50")))

	bal := f.saldo(t, warehouseA)
	assert.True(t, bal.Quantity.Equal(d("10")))
	assert.True(t, bal.AverageUnitCost.Equal(d("5")))
}

func TestCompras_PromedioPonderado(t *testing.T) {
	f := newFixture(t)

	// 10 @ 10.00 y luego 5 @ 16.00 => promedio (100+80)/15 = 12.00
	f.compra(t, "10", "10")
	f.compra(t, "5", "16")

	bal := f.saldo(t, warehouseA)
	assert.True(t, bal.Quantity.Equal(d("15")))
	assert.True(t, bal.AverageUnitCost.Equal(d("12")), "promedio esperado 12, got %s", bal.AverageUnitCost)
}

func TestEntrada_SinCostoUnitario(t *testing.T) {
	f := newFixture(t)

	_, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseA,
		TypeCode:          entity.TypeCompraIn,
		Quantity:          d("10"),
		ReferenceDocument: "FAC-001",
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "una entrada sin costo unitario debe rechazarse")
}

func TestMovimiento_TipoDesconocido(t *testing.T) {
	f := newFixture(t)

	_, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:   productID,
		WarehouseID: warehouseA,
		TypeCode:    "MERMA_OUT",
		Quantity:    d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownMovementType)
}

func TestMovimiento_DocumentoRequerido(t *testing.T) {
	f := newFixture(t)
	unitCost := d("5")

	_, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:   productID,
		WarehouseID: warehouseA,
		TypeCode:    entity.TypeCompraIn,
		Quantity:    d("10"),
		UnitCost:    &unitCost,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "COMPRA_IN exige documento de referencia")
}

func TestMovimiento_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t)

	_, err := f.venta(t, "0")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.venta(t, "-3")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas: costo de venta y suficiencia
// ──────────────────────────────────────────────────────────────────────────────

func TestSalida_CostoPromedioNoCambia(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "10", "10")
	f.compra(t, "5", "16") // promedio 12

	m, err := f.venta(t, "3")
	require.NoError(t, err)

	// La salida asienta al promedio vigente y no lo altera.
	require.NotNil(t, m.UnitCost)
	assert.True(t, m.UnitCost.Equal(d("12")), "costo de venta debe ser el promedio vigente")
	assert.True(t, m.TotalCost.Equal(d("-36")))
	assert.True(t, m.Quantity.Equal(d("-3")), "la cantidad persiste con signo negativo")
	assert.True(t, m.StockBefore.Equal(d("15")))
	assert.True(t, m.StockAfter.Equal(d("12")))

	bal := f.saldo(t, warehouseA)
	assert.True(t, bal.Quantity.Equal(d("12")))
	assert.True(t, bal.AverageUnitCost.Equal(d("12")), "el promedio no cambia en salidas")
}

func TestSalida_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "5", "10")

	_, err := f.venta(t, "8")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La transacción revierte completa: ni asiento ni cambio de saldo.
	bal := f.saldo(t, warehouseA)
	assert.True(t, bal.Quantity.Equal(d("5")), "el saldo no debe cambiar tras un rechazo")
	assert.Empty(t, f.store.MovementsByType(entity.TypeVentaOut))
}

func TestVentasConcurrentes_SoloUnaGana(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "5", "10")

	// Dos ventas de 3 contra stock 5: exactamente una debe asentarse.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.venta(t, "3")
		}(i)
	}
	wg.Wait()

	var oks, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			oks++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, oks, "exactamente una venta debe ganar")
	assert.Equal(t, 1, insufficient, "la otra debe fallar por stock insuficiente")

	bal := f.saldo(t, warehouseA)
	assert.True(t, bal.Quantity.Equal(d("2")), "saldo final 5-3=2, got %s", bal.Quantity)
}

// Dos primeras entradas concurrentes sobre un par producto/bodega que aún no
// tiene fila de saldo: ambas deben asentarse y el saldo final es la suma,
// nunca la última escritura pisando a la otra.
func TestComprasConcurrentes_PrimerSaldoNoSePisa(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unitCost := d("5")
			_, errs[i] = f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
				ProductID:         productID,
				WarehouseID:       warehouseA,
				TypeCode:          entity.TypeCompraIn,
				Quantity:          d("10"),
				UnitCost:          &unitCost,
				ReferenceDocument: "FAC-001",
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	bal := f.saldo(t, warehouseA)
	assert.True(t, bal.Quantity.Equal(d("20")), "saldo final 10+10=20, got %s", bal.Quantity)

	// El libro y la proyección cuentan lo mismo.
	sum := decimal.Zero
	for _, m := range f.store.MovementsByType(entity.TypeCompraIn) {
		sum = sum.Add(m.Quantity)
	}
	assert.True(t, sum.Equal(bal.Quantity), "la suma del libro coincide con el saldo vivo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Autorización de ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestAjuste_QuedaPendienteSinAfectarStock(t *testing.T) {
	f := newFixture(t)
	unitCost := d("7")

	m, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseA,
		TypeCode:          entity.TypeAjusteIn,
		Quantity:          d("4"),
		UnitCost:          &unitCost,
		ReferenceDocument: "ACTA-01",
		Reason:            "sobrante de toma física",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementPendiente, m.Status)
	assert.Nil(t, m.StockBefore, "un PENDIENTE no congela saldos")
	assert.Nil(t, m.StockAfter)
	assert.Nil(t, m.TotalCost)

	bal := f.saldo(t, warehouseA)
	assert.True(t, bal.Quantity.IsZero(), "un PENDIENTE no toca el saldo")
}

func TestAjuste_AprobarAsientaConSaldoActual(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "10", "5")
	unitCost := d("8")

	pending, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseA,
		TypeCode:          entity.TypeAjusteIn,
		Quantity:          d("2"),
		UnitCost:          &unitCost,
		ReferenceDocument: "ACTA-02",
	})
	require.NoError(t, err)

	approved, err := f.auth.Approve(context.Background(), adminUserID, pending.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.MovementAprobado, approved.Status)
	require.NotNil(t, approved.AuthorizedBy)
	assert.Equal(t, adminUserID, *approved.AuthorizedBy)
	assert.NotNil(t, approved.AuthorizationDate)
	assert.True(t, approved.StockBefore.Equal(d("10")), "los saldos se congelan al aprobar, no al solicitar")
	assert.True(t, approved.StockAfter.Equal(d("12")))

	// Promedio: (10*5 + 2*8) / 12 = 5.5
	bal := f.saldo(t, warehouseA)
	assert.True(t, bal.Quantity.Equal(d("12")))
	assert.True(t, bal.AverageUnitCost.Equal(d("5.5")), "promedio esperado 5.5, got %s", bal.AverageUnitCost)

	// Un movimiento resuelto es terminal.
	_, err = f.auth.Approve(context.Background(), adminUserID, pending.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestAjusteSalida_AprobacionRevalidaStock(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "3", "5")

	pending, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseA,
		TypeCode:          entity.TypeAjusteOut,
		Quantity:          d("5"),
		ReferenceDocument: "ACTA-03",
	})
	require.NoError(t, err)

	_, err = f.auth.Approve(context.Background(), adminUserID, pending.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La aprobación fallida revierte: el movimiento sigue PENDIENTE.
	stored, err := memory.NewMovementRepository(f.store).GetByID(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementPendiente, stored.Status)
	assert.True(t, f.saldo(t, warehouseA).Quantity.Equal(d("3")))
}

func TestAjuste_RechazarNoTocaSaldo(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "10", "5")

	pending, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseA,
		TypeCode:          entity.TypeAjusteOut,
		Quantity:          d("4"),
		ReferenceDocument: "ACTA-04",
	})
	require.NoError(t, err)

	// Motivo obligatorio.
	_, err = f.auth.Reject(context.Background(), adminUserID, pending.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	rejected, err := f.auth.Reject(context.Background(), adminUserID, pending.ID, "conteo errado")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementRechazado, rejected.Status)
	assert.Equal(t, "conteo errado", rejected.RejectionReason)

	bal := f.saldo(t, warehouseA)
	assert.True(t, bal.Quantity.Equal(d("10")), "un rechazo no afecta el saldo")

	// RECHAZADO es terminal: no se puede aprobar después.
	_, err = f.auth.Approve(context.Background(), adminUserID, pending.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTraslado_MueveCostoPromedio(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "10", "4")

	out, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:     productID,
		WarehouseID:   warehouseA,
		ToWarehouseID: warehouseB,
		TypeCode:      entity.TypeTrasladoOut,
		Quantity:      d("4"),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.TypeTrasladoOut, out.TypeCode)
	assert.True(t, out.Quantity.Equal(d("-4")))
	assert.NotEmpty(t, out.TransferGroupID)

	// El asiento de entrada comparte grupo y entra al costo del origen.
	ins := f.store.MovementsByType(entity.TypeTrasladoIn)
	require.Len(t, ins, 1)
	assert.Equal(t, out.TransferGroupID, ins[0].TransferGroupID)
	assert.Equal(t, warehouseB, ins[0].WarehouseID)
	assert.True(t, ins[0].Quantity.Equal(d("4")))
	assert.True(t, ins[0].UnitCost.Equal(d("4")))

	balA := f.saldo(t, warehouseA)
	balB := f.saldo(t, warehouseB)
	assert.True(t, balA.Quantity.Equal(d("6")))
	assert.True(t, balA.AverageUnitCost.Equal(d("4")), "el promedio del origen no cambia")
	assert.True(t, balB.Quantity.Equal(d("4")))
	assert.True(t, balB.AverageUnitCost.Equal(d("4")), "el destino hereda el costo del origen")
}

func TestTraslado_StockInsuficienteRevierteAmbosAsientos(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "2", "4")

	_, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:     productID,
		WarehouseID:   warehouseA,
		ToWarehouseID: warehouseB,
		TypeCode:      entity.TypeTrasladoOut,
		Quantity:      d("5"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Empty(t, f.store.MovementsByType(entity.TypeTrasladoOut))
	assert.Empty(t, f.store.MovementsByType(entity.TypeTrasladoIn))
	assert.True(t, f.saldo(t, warehouseB).Quantity.IsZero())
}

func TestTraslado_ValidaBodegaDestino(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "10", "4")

	// Sin destino.
	_, err := f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:   productID,
		WarehouseID: warehouseA,
		TypeCode:    entity.TypeTrasladoOut,
		Quantity:    d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Mismo origen y destino.
	_, err = f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:     productID,
		WarehouseID:   warehouseA,
		ToWarehouseID: warehouseA,
		TypeCode:      entity.TypeTrasladoOut,
		Quantity:      d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// El traslado siempre se solicita por el asiento de salida.
	_, err = f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:     productID,
		WarehouseID:   warehouseA,
		ToWarehouseID: warehouseB,
		TypeCode:      entity.TypeTrasladoIn,
		Quantity:      d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_CierreCoincideConSaldoVivo(t *testing.T) {
	f := newFixture(t)
	f.compra(t, "10", "10")
	f.compra(t, "5", "16")
	_, err := f.venta(t, "3")
	require.NoError(t, err)

	// Un PENDIENTE no debe aparecer en el replay.
	_, err = f.poster.Post(context.Background(), staffUserID, kardex.MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseA,
		TypeCode:          entity.TypeAjusteOut,
		Quantity:          d("1"),
		ReferenceDocument: "ACTA-05",
	})
	require.NoError(t, err)

	res, err := f.query.GetLedger(context.Background(), productID, warehouseA, nil, nil)
	require.NoError(t, err)

	assert.Len(t, res.Movements, 3, "solo asientos APROBADO")
	assert.True(t, res.OpeningBalance.IsZero())
	assert.True(t, res.TotalIn.Equal(d("15")))
	assert.True(t, res.TotalOut.Equal(d("3")))
	assert.True(t, res.ClosingBalance.Equal(d("12")))

	bal := f.saldo(t, warehouseA)
	assert.True(t, res.ClosingBalance.Equal(bal.Quantity),
		"el cierre del replay debe coincidir con el saldo vivo")
}

func TestLedger_ProductoInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.query.GetLedger(context.Background(), "no-existe", warehouseA, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
