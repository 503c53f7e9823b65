package kardex

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// LedgerQueryUseCase reconstruye el kardex de un producto/bodega replayando
// asientos aprobados, independiente del saldo vivo. Sin cota de fecha final,
// el saldo de cierre debe coincidir con StockBalance (propiedad verificable).
type LedgerQueryUseCase struct {
	movRepo       repository.MovementRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewLedgerQueryUseCase construye el caso de uso con repositorios de lectura.
func NewLedgerQueryUseCase(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *LedgerQueryUseCase {
	return &LedgerQueryUseCase{movRepo: movRepo, productRepo: productRepo, warehouseRepo: warehouseRepo}
}

// LedgerResult kardex reconstruido para un rango de fechas.
type LedgerResult struct {
	Movements      []*entity.StockMovement
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	TotalIn        decimal.Decimal
	TotalOut       decimal.Decimal
}

// GetLedger devuelve los asientos APROBADO del rango en orden (fecha, id),
// el saldo de apertura (neto estrictamente anterior a from, cero si se
// omite), el de cierre y los totales de entrada y salida.
func (uc *LedgerQueryUseCase) GetLedger(ctx context.Context, productID, warehouseID string, from, to *time.Time) (*LedgerResult, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	opening := decimal.Zero
	if from != nil {
		opening, err = uc.movRepo.SumApprovedBefore(productID, warehouseID, *from)
		if err != nil {
			return nil, err
		}
	}
	movements, err := uc.movRepo.ListApproved(productID, warehouseID, from, to)
	if err != nil {
		return nil, err
	}

	totalIn, totalOut := decimal.Zero, decimal.Zero
	closing := opening
	for _, m := range movements {
		closing = closing.Add(m.Quantity)
		if m.Quantity.IsNegative() {
			totalOut = totalOut.Add(m.Quantity.Abs())
		} else {
			totalIn = totalIn.Add(m.Quantity)
		}
	}

	return &LedgerResult{
		Movements:      movements,
		OpeningBalance: opening,
		ClosingBalance: closing,
		TotalIn:        totalIn,
		TotalOut:       totalOut,
	}, nil
}

// ListMovements listado filtrable para la capa de presentación
// (producto, bodega, tipo, estado, rango de fechas, paginado).
func (uc *LedgerQueryUseCase) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return uc.movRepo.List(f)
}
