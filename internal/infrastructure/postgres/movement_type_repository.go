package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.MovementTypeRepository = (*MovementTypeRepo)(nil)

// MovementTypeRepo catálogo de tipos de movimiento (solo lectura).
type MovementTypeRepo struct {
	q Querier
}

// NewMovementTypeRepository construye el adaptador.
func NewMovementTypeRepository(q Querier) *MovementTypeRepo {
	return &MovementTypeRepo{q: q}
}

// GetByCode obtiene un tipo por código; nil si no existe.
func (r *MovementTypeRepo) GetByCode(code string) (*entity.MovementType, error) {
	query := `
		SELECT code, name, description, operation, affects_stock, requires_document, requires_authorization, active
		FROM movement_types WHERE code = $1`
	var t entity.MovementType
	err := r.q.QueryRow(context.Background(), query, code).Scan(
		&t.Code, &t.Name, &t.Description, &t.Operation,
		&t.AffectsStock, &t.RequiresDocument, &t.RequiresAuthorization, &t.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement type: %w", err)
	}
	return &t, nil
}

// List lista el catálogo, opcionalmente solo tipos activos.
func (r *MovementTypeRepo) List(onlyActive bool) ([]*entity.MovementType, error) {
	query := `
		SELECT code, name, description, operation, affects_stock, requires_document, requires_authorization, active
		FROM movement_types`
	if onlyActive {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY code`

	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list movement types: %w", err)
	}
	defer rows.Close()

	var list []*entity.MovementType
	for rows.Next() {
		var t entity.MovementType
		if err := rows.Scan(&t.Code, &t.Name, &t.Description, &t.Operation,
			&t.AffectsStock, &t.RequiresDocument, &t.RequiresAuthorization, &t.Active); err != nil {
			return nil, fmt.Errorf("scan movement type: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
