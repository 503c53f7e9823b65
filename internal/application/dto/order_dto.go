package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/orders"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// CreateOrderLineRequest línea del pedido a crear.
type CreateOrderLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// CreateOrderRequest body para POST /api/orders. Los totales los calcula el
// servidor; cualquier total que mande el cliente se ignora.
type CreateOrderRequest struct {
	ClientID    string                   `json:"client_id" validate:"required"`
	WarehouseID string                   `json:"warehouse_id" validate:"required"`
	OrderType   string                   `json:"order_type" validate:"required,oneof=CON_APROBACION COMPRA_DIRECTA"`
	Lines       []CreateOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ToInput convierte el request a la entrada del caso de uso.
func (r CreateOrderRequest) ToInput() orders.CreateOrderInput {
	in := orders.CreateOrderInput{
		ClientID:    r.ClientID,
		WarehouseID: r.WarehouseID,
		OrderType:   r.OrderType,
	}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, orders.CreateOrderLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
		})
	}
	return in
}

// PayOrderRequest body para registrar el pago de un pedido.
type PayOrderRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=EFECTIVO TARJETA TRANSFERENCIA YAPE PLIN"`
	ProofRef      string `json:"payment_proof_reference,omitempty"`
}

// RejectOrderRequest body para rechazar un pedido.
type RejectOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// OrderLineResponse línea de pedido en respuestas.
type OrderLineResponse struct {
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Discount     decimal.Decimal `json:"discount"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

// OrderResponse representación JSON de un pedido.
type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	ClientID        string              `json:"client_id"`
	CreatedBy       string              `json:"created_by"`
	WarehouseID     string              `json:"warehouse_id"`
	OrderType       string              `json:"order_type"`
	Status          string              `json:"status"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Discount        decimal.Decimal     `json:"discount"`
	Tax             decimal.Decimal     `json:"tax"`
	Total           decimal.Decimal     `json:"total"`
	ApprovedBy      *string             `json:"approved_by,omitempty"`
	ApprovalDate    *time.Time          `json:"approval_date,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	PaymentMethod   *string             `json:"payment_method,omitempty"`
	PaymentDate     *time.Time          `json:"payment_date,omitempty"`
	PaymentProofRef string              `json:"payment_proof_reference,omitempty"`
	ShipmentDate    *time.Time          `json:"shipment_date,omitempty"`
	ResultingSaleID *string             `json:"resulting_sale_id,omitempty"`
	Lines           []OrderLineResponse `json:"lines"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// FromOrder mapea la entidad a su representación JSON.
func FromOrder(o *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		ClientID:        o.ClientID,
		CreatedBy:       o.CreatedBy,
		WarehouseID:     o.WarehouseID,
		OrderType:       o.OrderType,
		Status:          string(o.Status),
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		Tax:             o.Tax,
		Total:           o.Total,
		ApprovedBy:      o.ApprovedBy,
		ApprovalDate:    o.ApprovalDate,
		RejectionReason: o.RejectionReason,
		PaymentDate:     o.PaymentDate,
		PaymentProofRef: o.PaymentProofRef,
		ShipmentDate:    o.ShipmentDate,
		ResultingSaleID: o.ResultingSaleID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.PaymentMethod != nil {
		m := string(*o.PaymentMethod)
		resp.PaymentMethod = &m
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Discount:     l.Discount,
			LineSubtotal: l.LineSubtotal,
		})
	}
	return resp
}

// FromOrders mapea una lista de pedidos.
func FromOrders(os []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(os))
	for _, o := range os {
		out = append(out, FromOrder(o))
	}
	return out
}
