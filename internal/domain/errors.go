package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada uno mapea a un código estable en la capa HTTP.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrValidation          = errors.New("entrada inválida")
	ErrInvalidState        = errors.New("transición no permitida desde el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrUnknownMovementType = errors.New("tipo de movimiento desconocido o inactivo")
	ErrMissingProof        = errors.New("el método de pago requiere comprobante")
	ErrConflict            = errors.New("conflicto de concurrencia, reintente la operación")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrDuplicate           = errors.New("recurso duplicado")
)
