package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// ProductRepository catálogo de productos (referencia de solo lectura para
// el kardex: chequeo de existencia y precio de lista).
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
}
