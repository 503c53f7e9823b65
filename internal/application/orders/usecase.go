package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/kardex"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// UseCase máquina de estados de pedidos. Cada transición corre en su propia
// transacción, re-lee el pedido bajo bloqueo de fila y valida el estado de
// origen contra la tabla de transiciones antes de escribir.
type UseCase struct {
	txRunner      TxRunner
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	typeRepo      repository.MovementTypeRepository
	poster        *kardex.PostMovementUseCase
}

// NewUseCase construye el caso de uso. orderRepo va atado al pool para los
// listados; las transiciones usan los repos de la transacción.
func NewUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	typeRepo repository.MovementTypeRepository,
	poster *kardex.PostMovementUseCase,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		typeRepo:      typeRepo,
		poster:        poster,
	}
}

// CreateOrderLineInput línea del pedido a crear.
type CreateOrderLineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// CreateOrderInput entrada para crear un pedido.
type CreateOrderInput struct {
	ClientID    string
	WarehouseID string
	OrderType   string
	Lines       []CreateOrderLineInput
}

// Create crea un pedido con totales calculados en el servidor. Un pedido
// CON_APROBACION nace PENDIENTE; una COMPRA_DIRECTA nace APROBADO para que
// el cliente pague de inmediato.
func (uc *UseCase) Create(ctx context.Context, userID string, in CreateOrderInput) (*entity.Order, error) {
	if in.ClientID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrValidation
	}
	if in.OrderType != entity.OrderTypeConAprobacion && in.OrderType != entity.OrderTypeCompraDirecta {
		return nil, domain.ErrValidation
	}
	wh, err := uc.warehouseRepo.GetByID(in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || !wh.Active {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	orderID := uuid.New().String()
	order := &entity.Order{
		ID:          orderID,
		OrderNumber: documentNumber("PED"),
		ClientID:    in.ClientID,
		CreatedBy:   userID,
		WarehouseID: in.WarehouseID,
		OrderType:   in.OrderType,
		Status:      entity.OrderPendiente,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.OrderType == entity.OrderTypeCompraDirecta {
		order.Status = entity.OrderAprobado
	}

	for _, l := range in.Lines {
		if !l.Quantity.GreaterThan(decimal.Zero) || l.UnitPrice.IsNegative() || l.Discount.IsNegative() {
			return nil, domain.ErrValidation
		}
		product, err := uc.productRepo.GetByID(l.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.Active {
			return nil, domain.ErrNotFound
		}
		order.Lines = append(order.Lines, entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
		})
	}
	order.RecalculateTotals()

	err = uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, _ repository.SaleRepository, _ repository.MovementRepository, _ repository.BalanceRepository) error {
		return orderRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("status", string(order.Status)).
		Msg("pedido creado")
	return order, nil
}

// StartProcessing pasa un pedido PENDIENTE a EN_PROCESO (staff lo tomó para
// revisión).
func (uc *UseCase) StartProcessing(ctx context.Context, staffID, orderID string) (*entity.Order, error) {
	return uc.transition(ctx, orderID, func(o *entity.Order) error {
		if o.Status != entity.OrderPendiente {
			return domain.ErrInvalidState
		}
		o.Status = entity.OrderEnProceso
		return nil
	})
}

// Approve aprueba un pedido CON_APROBACION en PENDIENTE o EN_PROCESO.
func (uc *UseCase) Approve(ctx context.Context, staffID, orderID string) (*entity.Order, error) {
	return uc.transition(ctx, orderID, func(o *entity.Order) error {
		if o.OrderType != entity.OrderTypeConAprobacion {
			return domain.ErrInvalidState
		}
		if !o.Status.CanTransition(entity.OrderAprobado) {
			return domain.ErrInvalidState
		}
		now := time.Now()
		o.Status = entity.OrderAprobado
		o.ApprovedBy = &staffID
		o.ApprovalDate = &now
		return nil
	})
}

// Reject rechaza un pedido con motivo obligatorio.
func (uc *UseCase) Reject(ctx context.Context, staffID, orderID, reason string) (*entity.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.ErrValidation
	}
	return uc.transition(ctx, orderID, func(o *entity.Order) error {
		if o.OrderType != entity.OrderTypeConAprobacion {
			return domain.ErrInvalidState
		}
		if !o.Status.CanTransition(entity.OrderRechazado) {
			return domain.ErrInvalidState
		}
		now := time.Now()
		o.Status = entity.OrderRechazado
		o.RejectionReason = reason
		o.ApprovedBy = &staffID
		o.ApprovalDate = &now
		return nil
	})
}

// MarkPaid registra el pago de un pedido APROBADO. Los métodos tipo
// transferencia (TRANSFERENCIA, YAPE, PLIN) exigen referencia de comprobante.
func (uc *UseCase) MarkPaid(ctx context.Context, userID, orderID string, method entity.PaymentMethod, proofRef string) (*entity.Order, error) {
	if !method.Valid() {
		return nil, domain.ErrValidation
	}
	if method.RequiresProof() && strings.TrimSpace(proofRef) == "" {
		return nil, domain.ErrMissingProof
	}
	return uc.transition(ctx, orderID, func(o *entity.Order) error {
		if !o.Status.CanTransition(entity.OrderPagado) {
			return domain.ErrInvalidState
		}
		now := time.Now()
		o.Status = entity.OrderPagado
		o.PaymentMethod = &method
		o.PaymentDate = &now
		o.PaymentProofRef = proofRef
		return nil
	})
}

// Cancel cancela un pedido. Solo válido en PENDIENTE o EN_PROCESO: después
// del pago o del despacho ya no hay cancelación.
func (uc *UseCase) Cancel(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	return uc.transition(ctx, orderID, func(o *entity.Order) error {
		if !o.Status.CanTransition(entity.OrderCancelado) {
			return domain.ErrInvalidState
		}
		o.Status = entity.OrderCancelado
		return nil
	})
}

// GetByID devuelve un pedido con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	o, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// List devuelve pedidos filtrados (cliente, estado, paginado).
func (uc *UseCase) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return uc.orderRepo.List(f)
}

// transition ejecuta una transición simple: bloquea la fila del pedido,
// aplica fn y persiste con chequeo optimista de versión.
func (uc *UseCase) transition(ctx context.Context, orderID string, fn func(o *entity.Order) error) (*entity.Order, error) {
	var result *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, _ repository.SaleRepository, _ repository.MovementRepository, _ repository.BalanceRepository) error {
		o, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if err := fn(o); err != nil {
			return err
		}
		o.UpdatedAt = time.Now()
		if err := orderRepo.Update(o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("order_id", result.ID).
		Str("status", string(result.Status)).
		Msg("pedido actualizado")
	return result, nil
}

// documentNumber genera un número legible tipo PED-4F2A9C31 / VEN-....
func documentNumber(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}
