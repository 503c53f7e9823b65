package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/kardex-api/internal/domain"
)

// validate instancia compartida del validador de structs (tags `validate`).
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate valida un request contra sus tags; un fallo se reporta como
// error de validación de dominio.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		return domain.ErrValidation
	}
	return nil
}

// ErrorResponse cuerpo de error HTTP: código estable legible por máquina
// más mensaje humano.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
