package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// MovementTypeRepository catálogo cerrado de tipos de movimiento (solo lectura;
// el seed vive en las migraciones).
type MovementTypeRepository interface {
	GetByCode(code string) (*entity.MovementType, error)
	List(onlyActive bool) ([]*entity.MovementType, error)
}
