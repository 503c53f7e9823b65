package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// BalanceRepository puerto del saldo vivo por producto/bodega.
// Solo los casos de uso de kardex lo escriben, siempre dentro de la misma
// transacción que el asiento y bajo GetForUpdate.
type BalanceRepository interface {
	// Get devuelve el saldo; si no existe fila devuelve saldo en cero.
	Get(productID, warehouseID string) (*entity.StockBalance, error)
	// GetForUpdate igual que Get pero bloqueando la fila (SELECT FOR UPDATE)
	// para serializar lecturas-modificaciones concurrentes del mismo saldo.
	GetForUpdate(productID, warehouseID string) (*entity.StockBalance, error)
	Upsert(b *entity.StockBalance) error
}
