package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de un pedido (enum cerrado).
type OrderStatus string

const (
	OrderPendiente OrderStatus = "PENDIENTE"
	OrderEnProceso OrderStatus = "EN_PROCESO"
	OrderAprobado  OrderStatus = "APROBADO"
	OrderPagado    OrderStatus = "PAGADO"
	OrderProcesado OrderStatus = "PROCESADO" // enviado / en camino
	OrderCancelado OrderStatus = "CANCELADO"
	OrderRechazado OrderStatus = "RECHAZADO"
)

// Tipos de pedido.
const (
	OrderTypeConAprobacion = "CON_APROBACION" // requiere aprobación de staff
	OrderTypeCompraDirecta = "COMPRA_DIRECTA" // nace aprobado, el cliente paga de una
)

// PaymentMethod método de pago (enum cerrado).
type PaymentMethod string

const (
	PaymentEfectivo      PaymentMethod = "EFECTIVO"
	PaymentTarjeta       PaymentMethod = "TARJETA"
	PaymentTransferencia PaymentMethod = "TRANSFERENCIA"
	PaymentYape          PaymentMethod = "YAPE"
	PaymentPlin          PaymentMethod = "PLIN"
)

// IGVRate tasa de IGV aplicada sobre (subtotal - descuento).
var IGVRate = decimal.NewFromFloat(0.18)

// orderTransitions tabla de transiciones válidas. Estados ausentes son
// terminales: PROCESADO, CANCELADO y RECHAZADO no tienen salida.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPendiente: {OrderEnProceso, OrderAprobado, OrderRechazado, OrderCancelado},
	OrderEnProceso: {OrderAprobado, OrderRechazado, OrderCancelado},
	OrderAprobado:  {OrderPagado},
	OrderPagado:    {OrderProcesado},
}

// CanTransition indica si la tabla permite pasar de s a target.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no admite ninguna transición.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// Valid indica si el método pertenece al enum cerrado.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentEfectivo, PaymentTarjeta, PaymentTransferencia, PaymentYape, PaymentPlin:
		return true
	}
	return false
}

// RequiresProof indica si el método exige referencia de comprobante
// (métodos tipo transferencia: el pago no es verificable en caja).
func (m PaymentMethod) RequiresProof() bool {
	switch m {
	case PaymentTransferencia, PaymentYape, PaymentPlin:
		return true
	}
	return false
}

// OrderLine línea de pedido. Los precios quedan congelados al crear:
// el despacho factura a estos valores, no al precio vigente del producto.
type OrderLine struct {
	ID           string
	OrderID      string
	ProductID    string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Discount     decimal.Decimal
	LineSubtotal decimal.Decimal
}

// Order (pedido) de un cliente. Los totales se calculan siempre en el
// servidor a partir de las líneas; jamás se confía en un total del cliente.
// Version es la columna de concurrencia optimista: cada Update la incrementa
// y un update sobre versión vieja se reporta como conflicto.
type Order struct {
	ID              string
	OrderNumber     string
	ClientID        string
	CreatedBy       string
	WarehouseID     string // bodega desde la que se despacha
	OrderType       string
	Status          OrderStatus
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	ApprovedBy      *string
	ApprovalDate    *time.Time
	RejectionReason string
	PaymentMethod   *PaymentMethod
	PaymentDate     *time.Time
	PaymentProofRef string
	ShipmentDate    *time.Time
	ResultingSaleID *string
	Version         int
	Lines           []OrderLine
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RecalculateTotals recalcula subtotal por línea, descuento, IGV y total
// a partir de las líneas. Redondeo a 2 decimales al final de cada agregado.
func (o *Order) RecalculateTotals() {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for i := range o.Lines {
		l := &o.Lines[i]
		l.LineSubtotal = l.Quantity.Mul(l.UnitPrice).Sub(l.Discount)
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice))
		discount = discount.Add(l.Discount)
	}
	o.Subtotal = subtotal.Round(2)
	o.Discount = discount.Round(2)
	base := o.Subtotal.Sub(o.Discount)
	o.Tax = base.Mul(IGVRate).Round(2)
	o.Total = base.Add(o.Tax).Round(2)
}
