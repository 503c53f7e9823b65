package orders

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// TxRunner transaccional para pedidos. El despacho necesita pedido, venta,
// asientos de kardex y saldos en la misma transacción; las transiciones
// simples usan solo el repositorio de pedidos e ignoran el resto.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
	) error) error
}
