package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la venta con sus líneas. La constraint única sobre
// order_id respalda la idempotencia del despacho a nivel de datos.
func (r *SaleRepo) Create(s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, sale_number, order_id, client_id, created_by, subtotal, discount, tax, total, sale_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.SaleNumber, s.OrderID, s.ClientID, s.CreatedBy,
		s.Subtotal, s.Discount, s.Tax, s.Total, s.SaleDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create sale: %w", err)
	}
	for i := range s.Lines {
		l := &s.Lines[i]
		lineQuery := `
			INSERT INTO sale_lines (id, sale_id, product_id, quantity, unit_price, discount, line_subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := r.q.Exec(context.Background(), lineQuery,
			l.ID, l.SaleID, l.ProductID, l.Quantity, l.UnitPrice, l.Discount, l.LineSubtotal); err != nil {
			return fmt.Errorf("create sale line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una venta con sus líneas; nil si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `
		SELECT id, sale_number, order_id, client_id, created_by, subtotal, discount, tax, total, sale_date
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.SaleNumber, &s.OrderID, &s.ClientID, &s.CreatedBy,
		&s.Subtotal, &s.Discount, &s.Tax, &s.Total, &s.SaleDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	lineQuery := `
		SELECT id, sale_id, product_id, quantity, unit_price, discount, line_subtotal
		FROM sale_lines WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), lineQuery, id)
	if err != nil {
		return nil, fmt.Errorf("load sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Discount, &l.LineSubtotal); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, l)
	}
	return &s, rows.Err()
}
