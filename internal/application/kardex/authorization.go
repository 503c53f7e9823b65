package kardex

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// AuthorizationUseCase resuelve movimientos PENDIENTE: aprobar asienta el
// movimiento contra el saldo vigente, rechazar lo cierra sin efecto. Ambos
// estados resultantes son terminales.
type AuthorizationUseCase struct {
	txRunner TxRunner
	typeRepo repository.MovementTypeRepository
}

// NewAuthorizationUseCase construye el caso de uso.
func NewAuthorizationUseCase(txRunner TxRunner, typeRepo repository.MovementTypeRepository) *AuthorizationUseCase {
	return &AuthorizationUseCase{txRunner: txRunner, typeRepo: typeRepo}
}

// Approve aprueba un movimiento PENDIENTE. La suficiencia de stock se
// re-valida contra el saldo actual (pudo haber cambiado desde la solicitud);
// si no alcanza, la transacción revierte y el movimiento sigue PENDIENTE.
// Este es el único camino por el que un PENDIENTE adquiere costos y saldos
// congelados.
func (uc *AuthorizationUseCase) Approve(ctx context.Context, approverID, movementID string) (*entity.StockMovement, error) {
	var result *entity.StockMovement

	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, balRepo repository.BalanceRepository) error {
		mov, err := movRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if mov.Status != entity.MovementPendiente {
			return domain.ErrInvalidState
		}
		mt, err := uc.typeRepo.GetByCode(mov.TypeCode)
		if err != nil {
			return err
		}
		if mt == nil {
			return domain.ErrUnknownMovementType
		}

		now := time.Now()
		if err := settleApproved(balRepo, mt, mov, nil, now); err != nil {
			return err
		}
		mov.AuthorizedBy = &approverID
		mov.AuthorizationDate = &now
		if err := movRepo.Update(mov); err != nil {
			return err
		}
		result = mov
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("movement_id", result.ID).
		Str("approved_by", approverID).
		Msg("movimiento aprobado")
	return result, nil
}

// Reject rechaza un movimiento PENDIENTE con motivo obligatorio. No toca el
// saldo; el movimiento queda visible en el historial con efecto neto cero.
func (uc *AuthorizationUseCase) Reject(ctx context.Context, approverID, movementID, reason string) (*entity.StockMovement, error) {
	if reason == "" {
		return nil, domain.ErrValidation
	}
	var result *entity.StockMovement

	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, _ repository.BalanceRepository) error {
		mov, err := movRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if mov.Status != entity.MovementPendiente {
			return domain.ErrInvalidState
		}
		now := time.Now()
		mov.Status = entity.MovementRechazado
		mov.RejectionReason = reason
		mov.AuthorizedBy = &approverID
		mov.AuthorizationDate = &now
		if err := movRepo.Update(mov); err != nil {
			return err
		}
		result = mov
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("movement_id", result.ID).
		Str("rejected_by", approverID).
		Msg("movimiento rechazado")
	return result, nil
}
