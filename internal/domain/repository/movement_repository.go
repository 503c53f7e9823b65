package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// MovementFilter filtros del listado de movimientos (capa de presentación).
type MovementFilter struct {
	ProductID   string
	WarehouseID string
	TypeCode    string
	Status      entity.MovementStatus
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// MovementRepository puerto de persistencia del kardex (append-only para
// movimientos aprobados; Update solo se usa para resolver PENDIENTE).
type MovementRepository interface {
	Create(m *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// GetForUpdate bloquea la fila del movimiento para resolver la
	// autorización sin carreras entre dos aprobadores.
	GetForUpdate(id string) (*entity.StockMovement, error)
	Update(m *entity.StockMovement) error
	List(f MovementFilter) ([]*entity.StockMovement, error)
	// ListApproved devuelve los asientos APROBADO de un producto/bodega en
	// rango, ordenados por fecha de movimiento y luego id.
	ListApproved(productID, warehouseID string, from, to *time.Time) ([]*entity.StockMovement, error)
	// SumApprovedBefore suma las cantidades con signo de los asientos
	// APROBADO estrictamente anteriores a before (saldo de apertura).
	SumApprovedBefore(productID, warehouseID string, before time.Time) (decimal.Decimal, error)
}
