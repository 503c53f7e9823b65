package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementStatus estado de un movimiento de kardex (enum cerrado).
type MovementStatus string

const (
	MovementPendiente MovementStatus = "PENDIENTE"
	MovementAprobado  MovementStatus = "APROBADO"
	MovementRechazado MovementStatus = "RECHAZADO"
)

// StockMovement es un asiento del kardex. Inmutable una vez APROBADO:
// las correcciones son movimientos compensatorios nuevos, nunca updates.
//
// Quantity lleva signo según la clase del tipo: positiva para entradas,
// negativa para salidas y para el asiento origen de un traslado.
// StockBefore/StockAfter/UnitCost/TotalCost quedan congelados al aprobar;
// en un movimiento PENDIENTE los punteros van en nil y el saldo no cambia.
type StockMovement struct {
	ID                string
	ProductID         string
	WarehouseID       string
	TypeCode          string
	Quantity          decimal.Decimal
	UnitCost          *decimal.Decimal
	TotalCost         *decimal.Decimal
	StockBefore       *decimal.Decimal
	StockAfter        *decimal.Decimal
	ReferenceDocument string
	ReferenceNumber   string
	MovementDate      time.Time
	PostedBy          string
	AuthorizedBy      *string
	AuthorizationDate *time.Time
	Reason            string
	RejectionReason   string
	TransferGroupID   string // enlaza los dos asientos de un traslado
	Status            MovementStatus
	CreatedAt         time.Time
}

// IsTerminal indica si el estado ya no admite aprobación ni rechazo.
func (s MovementStatus) IsTerminal() bool {
	return s == MovementAprobado || s == MovementRechazado
}
