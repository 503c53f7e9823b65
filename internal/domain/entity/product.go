package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. Para el kardex es dato de referencia de
// solo lectura: el stock vive únicamente en StockBalance y el costo promedio
// también; acá no hay columna de stock que alguien pueda escribir por fuera.
type Product struct {
	ID        string
	SKU       string
	Name      string
	Price     decimal.Decimal // precio de venta de lista
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
