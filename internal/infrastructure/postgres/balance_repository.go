package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo saldo vivo por producto/bodega sobre PostgreSQL (pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el saldo; si no hay fila devuelve saldo en cero (la fila se
// materializa recién con el primer Upsert).
func (r *BalanceRepo) Get(productID, warehouseID string) (*entity.StockBalance, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, average_unit_cost, updated_at
		FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2`
	return r.scan(r.q.QueryRow(context.Background(), query, productID, warehouseID), productID, warehouseID, "get balance")
}

// GetForUpdate obtiene el saldo bloqueando la fila (SELECT FOR UPDATE): toda
// lectura-modificación concurrente del mismo saldo queda serializada.
// Materializa primero la fila en cero si no existe: FOR UPDATE sobre cero
// filas no bloquea nada y dos primeros movimientos concurrentes se pisarían.
func (r *BalanceRepo) GetForUpdate(productID, warehouseID string) (*entity.StockBalance, error) {
	seed := `
		INSERT INTO stock_balances (product_id, warehouse_id, quantity, average_unit_cost, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), seed, productID, warehouseID); err != nil {
		return nil, fmt.Errorf("init balance: %w", err)
	}
	query := `
		SELECT product_id, warehouse_id, quantity, average_unit_cost, updated_at
		FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	return r.scan(r.q.QueryRow(context.Background(), query, productID, warehouseID), productID, warehouseID, "get balance for update")
}

// Upsert inserta o actualiza cantidad y costo promedio del saldo.
func (r *BalanceRepo) Upsert(b *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (product_id, warehouse_id, quantity, average_unit_cost, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, average_unit_cost = EXCLUDED.average_unit_cost, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, b.ProductID, b.WarehouseID, b.Quantity, b.AverageUnitCost)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

func (r *BalanceRepo) scan(row pgx.Row, productID, warehouseID, op string) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(&b.ProductID, &b.WarehouseID, &b.Quantity, &b.AverageUnitCost, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{
				ProductID:       productID,
				WarehouseID:     warehouseID,
				Quantity:        decimal.Zero,
				AverageUnitCost: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}
