package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/kardex"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/kardex/movements.
// UnitCost es obligatorio en entradas; ToWarehouseID solo en traslados.
type RegisterMovementRequest struct {
	ProductID         string           `json:"product_id" validate:"required"`
	WarehouseID       string           `json:"warehouse_id" validate:"required"`
	ToWarehouseID     string           `json:"to_warehouse_id,omitempty"`
	Type              string           `json:"type" validate:"required"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceDocument string           `json:"reference_document,omitempty"`
	ReferenceNumber   string           `json:"reference_number,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	MovementDate      *time.Time       `json:"movement_date,omitempty"`
}

// ToDraft convierte el request al borrador del caso de uso.
func (r RegisterMovementRequest) ToDraft() kardex.MovementDraft {
	return kardex.MovementDraft{
		ProductID:         r.ProductID,
		WarehouseID:       r.WarehouseID,
		ToWarehouseID:     r.ToWarehouseID,
		TypeCode:          r.Type,
		Quantity:          r.Quantity,
		UnitCost:          r.UnitCost,
		ReferenceDocument: r.ReferenceDocument,
		ReferenceNumber:   r.ReferenceNumber,
		Reason:            r.Reason,
		MovementDate:      r.MovementDate,
	}
}

// RejectMovementRequest body para rechazar un movimiento pendiente.
type RejectMovementRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// MovementResponse representación JSON de un asiento de kardex.
type MovementResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	WarehouseID       string           `json:"warehouse_id"`
	Type              string           `json:"type"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost         *decimal.Decimal `json:"total_cost,omitempty"`
	StockBefore       *decimal.Decimal `json:"stock_before,omitempty"`
	StockAfter        *decimal.Decimal `json:"stock_after,omitempty"`
	ReferenceDocument string           `json:"reference_document,omitempty"`
	ReferenceNumber   string           `json:"reference_number,omitempty"`
	MovementDate      time.Time        `json:"movement_date"`
	PostedBy          string           `json:"posted_by"`
	AuthorizedBy      *string          `json:"authorized_by,omitempty"`
	AuthorizationDate *time.Time       `json:"authorization_date,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	RejectionReason   string           `json:"rejection_reason,omitempty"`
	TransferGroupID   string           `json:"transfer_group_id,omitempty"`
	Status            string           `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
}

// FromMovement mapea la entidad a su representación JSON.
func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                m.ID,
		ProductID:         m.ProductID,
		WarehouseID:       m.WarehouseID,
		Type:              m.TypeCode,
		Quantity:          m.Quantity,
		UnitCost:          m.UnitCost,
		TotalCost:         m.TotalCost,
		StockBefore:       m.StockBefore,
		StockAfter:        m.StockAfter,
		ReferenceDocument: m.ReferenceDocument,
		ReferenceNumber:   m.ReferenceNumber,
		MovementDate:      m.MovementDate,
		PostedBy:          m.PostedBy,
		AuthorizedBy:      m.AuthorizedBy,
		AuthorizationDate: m.AuthorizationDate,
		Reason:            m.Reason,
		RejectionReason:   m.RejectionReason,
		TransferGroupID:   m.TransferGroupID,
		Status:            string(m.Status),
		CreatedAt:         m.CreatedAt,
	}
}

// FromMovements mapea una lista de asientos.
func FromMovements(ms []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMovement(m))
	}
	return out
}

// LedgerResponse kardex reconstruido de un producto/bodega.
type LedgerResponse struct {
	ProductID      string             `json:"product_id"`
	WarehouseID    string             `json:"warehouse_id"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
	TotalIn        decimal.Decimal    `json:"total_in"`
	TotalOut       decimal.Decimal    `json:"total_out"`
	Movements      []MovementResponse `json:"movements"`
}
