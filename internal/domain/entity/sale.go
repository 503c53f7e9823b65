package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale venta materializada al despachar un pedido pagado. Espeja las líneas
// del pedido a sus precios congelados y sirve de documento de referencia
// para los asientos VENTA_OUT del kardex.
type Sale struct {
	ID         string
	SaleNumber string
	OrderID    string
	ClientID   string
	CreatedBy  string
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	SaleDate   time.Time
	Lines      []SaleLine
}

// SaleLine línea de venta.
type SaleLine struct {
	ID           string
	SaleID       string
	ProductID    string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Discount     decimal.Decimal
	LineSubtotal decimal.Decimal
}
