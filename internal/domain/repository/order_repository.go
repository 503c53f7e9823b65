package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// OrderFilter filtros del listado de pedidos.
type OrderFilter struct {
	ClientID string
	Status   entity.OrderStatus
	Limit    int
	Offset   int
}

// OrderRepository puerto de persistencia de pedidos. Los pedidos solo mutan
// vía las transiciones del caso de uso; Update aplica chequeo optimista por
// versión y debe reportar domain.ErrConflict si la versión ya cambió.
type OrderRepository interface {
	Create(o *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila del pedido para la transición en curso.
	GetForUpdate(id string) (*entity.Order, error)
	Update(o *entity.Order) error
	List(f OrderFilter) ([]*entity.Order, error)
}
