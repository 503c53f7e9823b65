package kardex

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	domkardex "github.com/jhoicas/kardex-api/internal/domain/kardex"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// PostMovementUseCase registra asientos de kardex de forma transaccional:
// valida el borrador, congela costos y saldos bajo bloqueo de fila y persiste
// asiento + saldo en la misma transacción (ambos o ninguno).
type PostMovementUseCase struct {
	txRunner      TxRunner
	typeRepo      repository.MovementTypeRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewPostMovementUseCase construye el caso de uso.
func NewPostMovementUseCase(
	txRunner TxRunner,
	typeRepo repository.MovementTypeRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *PostMovementUseCase {
	return &PostMovementUseCase{
		txRunner:      txRunner,
		typeRepo:      typeRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
	}
}

// MovementDraft borrador de un movimiento. Quantity siempre positiva; el
// signo lo pone la clase del tipo. UnitCost es obligatorio para entradas.
// ToWarehouseID solo aplica a traslados (TypeCode = TRASLADO_OUT).
type MovementDraft struct {
	ProductID         string
	WarehouseID       string
	ToWarehouseID     string
	TypeCode          string
	Quantity          decimal.Decimal
	UnitCost          *decimal.Decimal
	ReferenceDocument string
	ReferenceNumber   string
	Reason            string
	MovementDate      *time.Time
}

// Post valida el borrador y registra el movimiento. Tipos que requieren
// autorización quedan PENDIENTE sin tocar el saldo; el resto se aprueba y
// asienta de inmediato. Devuelve el movimiento persistido (el asiento de
// salida en el caso de un traslado).
func (uc *PostMovementUseCase) Post(ctx context.Context, userID string, draft MovementDraft) (*entity.StockMovement, error) {
	if !draft.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrValidation
	}
	mt, err := uc.typeRepo.GetByCode(draft.TypeCode)
	if err != nil {
		return nil, err
	}
	if mt == nil || !mt.Active {
		return nil, domain.ErrUnknownMovementType
	}
	if mt.RequiresDocument && draft.ReferenceDocument == "" {
		return nil, domain.ErrValidation
	}
	if mt.Operation == entity.OperationEntrada && (draft.UnitCost == nil || draft.UnitCost.IsNegative()) {
		return nil, domain.ErrValidation
	}

	product, err := uc.productRepo.GetByID(draft.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, domain.ErrNotFound
	}
	if err := uc.checkWarehouse(draft.WarehouseID); err != nil {
		return nil, err
	}

	if mt.Operation == entity.OperationTransferencia {
		return uc.postTransfer(ctx, userID, mt, draft)
	}

	now := time.Now()
	mov := buildMovement(mt, draft, userID, now)

	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, balRepo repository.BalanceRepository) error {
		if mt.RequiresAuthorization {
			// Queda PENDIENTE: sin costos congelados y sin efecto en el saldo.
			return movRepo.Create(mov)
		}
		if err := settleApproved(balRepo, mt, mov, draft.UnitCost, now); err != nil {
			return err
		}
		return movRepo.Create(mov)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("movement_id", mov.ID).
		Str("type", mov.TypeCode).
		Str("product_id", mov.ProductID).
		Str("status", string(mov.Status)).
		Msg("movimiento registrado")
	return mov, nil
}

// postTransfer registra los dos asientos de un traslado (salida en origen,
// entrada en destino) en una sola transacción. El costo promedio del origen
// viaja al destino; el promedio del origen no cambia.
func (uc *PostMovementUseCase) postTransfer(ctx context.Context, userID string, mt *entity.MovementType, draft MovementDraft) (*entity.StockMovement, error) {
	if mt.Code != entity.TypeTrasladoOut {
		// El traslado siempre se solicita por el asiento de salida.
		return nil, domain.ErrValidation
	}
	if draft.ToWarehouseID == "" || draft.ToWarehouseID == draft.WarehouseID {
		return nil, domain.ErrValidation
	}
	if err := uc.checkWarehouse(draft.ToWarehouseID); err != nil {
		return nil, err
	}
	inType, err := uc.typeRepo.GetByCode(entity.TypeTrasladoIn)
	if err != nil {
		return nil, err
	}
	if inType == nil || !inType.Active {
		return nil, domain.ErrUnknownMovementType
	}

	now := time.Now()
	groupID := uuid.New().String()

	outMov := buildMovement(mt, draft, userID, now)
	outMov.TransferGroupID = groupID

	inDraft := draft
	inDraft.WarehouseID = draft.ToWarehouseID
	inMov := buildMovement(inType, inDraft, userID, now)
	inMov.TransferGroupID = groupID

	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, balRepo repository.BalanceRepository) error {
		// Bloquear ambos saldos en orden estable de bodega para no
		// interbloquearse con otro traslado en sentido contrario.
		first, second := draft.WarehouseID, draft.ToWarehouseID
		if second < first {
			first, second = second, first
		}
		if _, err := balRepo.GetForUpdate(draft.ProductID, first); err != nil {
			return err
		}
		if _, err := balRepo.GetForUpdate(draft.ProductID, second); err != nil {
			return err
		}

		if err := settleApproved(balRepo, mt, outMov, nil, now); err != nil {
			return err
		}
		if err := movRepo.Create(outMov); err != nil {
			return err
		}
		// El destino entra al costo congelado en el asiento de salida.
		if err := settleApproved(balRepo, inType, inMov, outMov.UnitCost, now); err != nil {
			return err
		}
		return movRepo.Create(inMov)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("transfer_group", groupID).
		Str("product_id", draft.ProductID).
		Str("from", draft.WarehouseID).
		Str("to", draft.ToWarehouseID).
		Msg("traslado registrado")
	return outMov, nil
}

// PostSaleOutInTx asienta una salida por venta usando los repositorios de la
// transacción del caller (integración pedidos-kardex: el despacho de un pedido
// corre en una sola tx junto con la venta y el cambio de estado).
func (uc *PostMovementUseCase) PostSaleOutInTx(
	movRepo repository.MovementRepository,
	balRepo repository.BalanceRepository,
	ventaType *entity.MovementType,
	productID, warehouseID, userID string,
	quantity decimal.Decimal,
	saleNumber, saleID string,
	now time.Time,
) (*entity.StockMovement, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrValidation
	}
	mov := buildMovement(ventaType, MovementDraft{
		ProductID:         productID,
		WarehouseID:       warehouseID,
		TypeCode:          ventaType.Code,
		Quantity:          quantity,
		ReferenceDocument: saleNumber,
		ReferenceNumber:   saleID,
	}, userID, now)
	if err := settleApproved(balRepo, ventaType, mov, nil, now); err != nil {
		return nil, err
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func (uc *PostMovementUseCase) checkWarehouse(id string) error {
	wh, err := uc.warehouseRepo.GetByID(id)
	if err != nil {
		return err
	}
	if wh == nil || !wh.Active {
		return domain.ErrNotFound
	}
	return nil
}

// buildMovement arma el asiento base a partir del borrador. La cantidad se
// persiste con signo según la clase del tipo; un tipo que requiere
// autorización nace PENDIENTE con los campos congelados en nil.
func buildMovement(mt *entity.MovementType, draft MovementDraft, userID string, now time.Time) *entity.StockMovement {
	qty := draft.Quantity
	if mt.IsOutbound() {
		qty = qty.Neg()
	}
	movDate := now
	if draft.MovementDate != nil {
		movDate = *draft.MovementDate
	}
	status := entity.MovementAprobado
	if mt.RequiresAuthorization {
		status = entity.MovementPendiente
	}
	return &entity.StockMovement{
		ID:                uuid.New().String(),
		ProductID:         draft.ProductID,
		WarehouseID:       draft.WarehouseID,
		TypeCode:          mt.Code,
		Quantity:          qty,
		UnitCost:          draft.UnitCost, // costo solicitado; se congela al asentar
		ReferenceDocument: draft.ReferenceDocument,
		ReferenceNumber:   draft.ReferenceNumber,
		MovementDate:      movDate,
		PostedBy:          userID,
		Reason:            draft.Reason,
		Status:            status,
		CreatedAt:         now,
	}
}

// settleApproved congela costos y saldos de un movimiento bajo bloqueo de
// fila y actualiza el saldo vivo. El movimiento queda APROBADO con
// StockBefore/StockAfter/UnitCost/TotalCost definitivos; no lo persiste.
//
// Entradas: mezcla promedio ponderado con inCost (o con el costo solicitado
// del asiento; a falta de ambos, el promedio vigente). Salidas: valida
// suficiencia y asienta al promedio vigente (costo de venta), que no cambia.
// Tipos con AffectsStock=false congelan before==after y no escriben saldo.
func settleApproved(balRepo repository.BalanceRepository, mt *entity.MovementType, m *entity.StockMovement, inCost *decimal.Decimal, now time.Time) error {
	bal, err := balRepo.GetForUpdate(m.ProductID, m.WarehouseID)
	if err != nil {
		return err
	}
	before := bal.Quantity
	qtyAbs := m.Quantity.Abs()

	if !mt.AffectsStock {
		cost := bal.AverageUnitCost
		if inCost != nil {
			cost = *inCost
		} else if m.UnitCost != nil {
			cost = *m.UnitCost
		}
		total := m.Quantity.Mul(cost)
		m.UnitCost = &cost
		m.TotalCost = &total
		m.StockBefore = &before
		m.StockAfter = &before
		m.Status = entity.MovementAprobado
		return nil
	}

	switch {
	case mt.IsInbound():
		cost := bal.AverageUnitCost
		if inCost != nil {
			cost = *inCost
		} else if m.UnitCost != nil {
			cost = *m.UnitCost
		}
		newAvg := domkardex.AverageCost(bal.Quantity, bal.AverageUnitCost, qtyAbs, cost)
		after := before.Add(qtyAbs)
		total := qtyAbs.Mul(cost)

		bal.Quantity = after
		bal.AverageUnitCost = newAvg
		bal.UpdatedAt = now
		if err := balRepo.Upsert(bal); err != nil {
			return err
		}
		m.Quantity = qtyAbs
		m.UnitCost = &cost
		m.TotalCost = &total
		m.StockBefore = &before
		m.StockAfter = &after

	case mt.IsOutbound():
		if bal.Quantity.LessThan(qtyAbs) {
			return domain.ErrInsufficientStock
		}
		// Salida al costo promedio vigente; el promedio no cambia.
		cost := bal.AverageUnitCost
		after := before.Sub(qtyAbs)
		total := qtyAbs.Neg().Mul(cost)

		bal.Quantity = after
		bal.UpdatedAt = now
		if err := balRepo.Upsert(bal); err != nil {
			return err
		}
		m.Quantity = qtyAbs.Neg()
		m.UnitCost = &cost
		m.TotalCost = &total
		m.StockBefore = &before
		m.StockAfter = &after

	default:
		return domain.ErrUnknownMovementType
	}

	m.Status = entity.MovementAprobado
	return nil
}
