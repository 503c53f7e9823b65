package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// SaleRepository puerto de persistencia de ventas materializadas al despachar.
type SaleRepository interface {
	Create(s *entity.Sale) error
	GetByID(id string) (*entity.Sale, error)
}
