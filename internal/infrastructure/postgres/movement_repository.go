package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, product_id, warehouse_id, type_code, quantity, unit_cost, total_cost,
	stock_before, stock_after, reference_document, reference_number, movement_date,
	posted_by, authorized_by, authorization_date, reason, rejection_reason,
	transfer_group_id, status, created_at`

// MovementRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un asiento de kardex.
func (r *MovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, m.WarehouseID, m.TypeCode, m.Quantity, m.UnitCost, m.TotalCost,
		m.StockBefore, m.StockAfter, nullIfEmpty(m.ReferenceDocument), nullIfEmpty(m.ReferenceNumber), m.MovementDate,
		m.PostedBy, m.AuthorizedBy, m.AuthorizationDate, nullIfEmpty(m.Reason), nullIfEmpty(m.RejectionReason),
		nullIfEmpty(m.TransferGroupID), string(m.Status), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// Update persiste la resolución de un movimiento PENDIENTE (aprobación o
// rechazo): costos congelados, saldos, autorizador y estado.
func (r *MovementRepo) Update(m *entity.StockMovement) error {
	query := `
		UPDATE stock_movements
		SET quantity = $2, unit_cost = $3, total_cost = $4, stock_before = $5, stock_after = $6,
		    authorized_by = $7, authorization_date = $8, rejection_reason = $9, status = $10
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Quantity, m.UnitCost, m.TotalCost, m.StockBefore, m.StockAfter,
		m.AuthorizedBy, m.AuthorizationDate, nullIfEmpty(m.RejectionReason), string(m.Status),
	)
	if err != nil {
		return fmt.Errorf("update stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID; nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene un asiento bloqueando la fila (SELECT FOR UPDATE).
func (r *MovementRepo) GetForUpdate(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// List lista movimientos según filtros de presentación, más reciente primero.
func (r *MovementRepo) List(f repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
	args := []any{}
	pos := 1
	add := func(cond string, val any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, val)
		pos++
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.TypeCode != "" {
		add("type_code = $%d", f.TypeCode)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.From != nil {
		add("movement_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("movement_date <= $%d", *f.To)
	}
	query += fmt.Sprintf(" ORDER BY movement_date DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListApproved devuelve los asientos APROBADO de un producto/bodega en rango,
// en orden de replay (fecha de movimiento, luego id).
func (r *MovementRepo) ListApproved(productID, warehouseID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1 AND warehouse_id = $2 AND status = $3`
	args := []any{productID, warehouseID, string(entity.MovementAprobado)}
	pos := 4
	if from != nil {
		query += fmt.Sprintf(" AND movement_date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND movement_date <= $%d", pos)
		args = append(args, *to)
	}
	query += " ORDER BY movement_date ASC, id ASC"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list approved movements: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// SumApprovedBefore suma las cantidades con signo de los asientos APROBADO
// estrictamente anteriores a before (saldo de apertura del kardex).
func (r *MovementRepo) SumApprovedBefore(productID, warehouseID string, before time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_movements
		WHERE product_id = $1 AND warehouse_id = $2 AND status = $3 AND movement_date < $4`
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, productID, warehouseID, string(entity.MovementAprobado), before).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum approved before: %w", err)
	}
	return sum, nil
}

func (r *MovementRepo) scanOne(row pgx.Row) (*entity.StockMovement, error) {
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

func (r *MovementRepo) scanAll(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var refDoc, refNum, reason, rejection, transferGroup *string
	var status string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.WarehouseID, &m.TypeCode, &m.Quantity, &m.UnitCost, &m.TotalCost,
		&m.StockBefore, &m.StockAfter, &refDoc, &refNum, &m.MovementDate,
		&m.PostedBy, &m.AuthorizedBy, &m.AuthorizationDate, &reason, &rejection,
		&transferGroup, &status, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.ReferenceDocument = deref(refDoc)
	m.ReferenceNumber = deref(refNum)
	m.Reason = deref(reason)
	m.RejectionReason = deref(rejection)
	m.TransferGroupID = deref(transferGroup)
	m.Status = entity.MovementStatus(status)
	return &m, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
