package commands

import (
	"context"

	"event-ticketing/internal/domain/cart"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/pkg/clock"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
)

type SetCartItemRequest struct {
	TicketTypeID uuid.UUID
	Quantity     int64
}

type CartCommands interface {
	// SetItem adds or overwrites a line. A zero quantity removes it.
	SetItem(ctx context.Context, buyerID uuid.UUID, req SetCartItemRequest) error
	RemoveItem(ctx context.Context, buyerID, ticketTypeID uuid.UUID) error
}

type cartUseCaseImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	policy CheckoutPolicy
}

func NewCartUseCase(uow shared.UnitOfWork, clk clock.Clock, policy CheckoutPolicy) CartCommands {
	return &cartUseCaseImpl{uow: uow, clock: clk, policy: policy}
}

func (uc *cartUseCaseImpl) SetItem(ctx context.Context, buyerID uuid.UUID, req SetCartItemRequest) error {
	if req.Quantity == 0 {
		return uc.RemoveItem(ctx, buyerID, req.TicketTypeID)
	}

	tt, err := uc.uow.CommandReads().TicketTypeByID(ctx, req.TicketTypeID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrTicketTypeNotFound
		}
		return err
	}

	item, err := cart.NewItem(buyerID, tt.EventID, tt.ID, req.Quantity, uc.policy.MaxQuantityPerItem, uc.clock.Now())
	if err != nil {
		return err
	}

	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Carts().Upsert(ctx, tx.DB(), item)
	})
}

func (uc *cartUseCaseImpl) RemoveItem(ctx context.Context, buyerID, ticketTypeID uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Carts().Delete(ctx, tx.DB(), buyerID, ticketTypeID)
	})
}
