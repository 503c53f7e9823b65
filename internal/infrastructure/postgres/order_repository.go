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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, client_id, created_by, warehouse_id, order_type, status,
	subtotal, discount, tax, total, approved_by, approval_date, rejection_reason,
	payment_method, payment_date, payment_proof_reference, shipment_date, resulting_sale_id,
	version, created_at, updated_at`

// OrderRepo pedidos sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste el pedido con sus líneas.
func (r *OrderRepo) Create(o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(context.Background(), query,
		o.ID, o.OrderNumber, o.ClientID, o.CreatedBy, o.WarehouseID, o.OrderType, string(o.Status),
		o.Subtotal, o.Discount, o.Tax, o.Total, o.ApprovedBy, o.ApprovalDate, nullIfEmpty(o.RejectionReason),
		paymentMethodValue(o.PaymentMethod), o.PaymentDate, nullIfEmpty(o.PaymentProofRef), o.ShipmentDate, o.ResultingSaleID,
		o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		lineQuery := `
			INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price, discount, line_subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := r.q.Exec(context.Background(), lineQuery,
			l.ID, l.OrderID, l.ProductID, l.Quantity, l.UnitPrice, l.Discount, l.LineSubtotal); err != nil {
			return fmt.Errorf("create order line: %w", err)
		}
	}
	return nil
}

// Update persiste una transición de estado con chequeo optimista: si la
// versión ya cambió entre la lectura y el update, reporta ErrConflict para
// que el caller reintente la operación completa.
func (r *OrderRepo) Update(o *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, approved_by = $3, approval_date = $4, rejection_reason = $5,
		    payment_method = $6, payment_date = $7, payment_proof_reference = $8,
		    shipment_date = $9, resulting_sale_id = $10, version = version + 1, updated_at = $11
		WHERE id = $1 AND version = $12`
	tag, err := r.q.Exec(context.Background(), query,
		o.ID, string(o.Status), o.ApprovedBy, o.ApprovalDate, nullIfEmpty(o.RejectionReason),
		paymentMethodValue(o.PaymentMethod), o.PaymentDate, nullIfEmpty(o.PaymentProofRef),
		o.ShipmentDate, o.ResultingSaleID, o.UpdatedAt, o.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	o.Version++
	return nil
}

// GetByID obtiene un pedido con sus líneas; nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOne(query, id)
}

// GetForUpdate obtiene un pedido bloqueando la fila para la transición.
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id)
}

// List lista pedidos filtrados, más reciente primero (sin líneas).
func (r *OrderRepo) List(f repository.OrderFilter) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	pos := 1
	if f.ClientID != "" {
		query += fmt.Sprintf(" AND client_id = $%d", pos)
		args = append(args, f.ClientID)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, string(f.Status))
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *OrderRepo) getOne(query, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadLines(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) loadLines(o *entity.Order) error {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, discount, line_subtotal
		FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, o.ID)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Discount, &l.LineSubtotal); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var status string
	var rejection, paymentMethod, proofRef *string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.ClientID, &o.CreatedBy, &o.WarehouseID, &o.OrderType, &status,
		&o.Subtotal, &o.Discount, &o.Tax, &o.Total, &o.ApprovedBy, &o.ApprovalDate, &rejection,
		&paymentMethod, &o.PaymentDate, &proofRef, &o.ShipmentDate, &o.ResultingSaleID,
		&o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	o.RejectionReason = deref(rejection)
	o.PaymentProofRef = deref(proofRef)
	if paymentMethod != nil {
		m := entity.PaymentMethod(*paymentMethod)
		o.PaymentMethod = &m
	}
	return &o, nil
}

func paymentMethodValue(m *entity.PaymentMethod) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}
