package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance saldo vivo de un producto en una bodega (fila materializada).
// Solo lo escribe el motor de kardex, siempre bajo bloqueo de fila y en la
// misma transacción que el asiento que lo justifica.
type StockBalance struct {
	ProductID       string
	WarehouseID     string
	Quantity        decimal.Decimal
	AverageUnitCost decimal.Decimal
	UpdatedAt       time.Time
}
