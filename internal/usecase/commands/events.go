package commands

import (
	"context"
	"encoding/json"
	"time"

	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/ticket"
	"event-ticketing/internal/usecase/shared"
)

const (
	EventOrderConfirmed      = "order.confirmed"
	EventOrderCancelled      = "order.cancelled"
	EventOrderRefunded       = "order.refunded"
	EventOrderRefundRequired = "order.refund_required"
)

type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"order_id"`
	BuyerID        string    `json:"buyer_id"`
	EventID        string    `json:"event_id"`
	Status         string    `json:"status"`
	Total          int64     `json:"total"`
	RefundedAmount int64     `json:"refunded_amount,omitempty"`
	Currency       string    `json:"currency"`
	Reason         string    `json:"reason,omitempty"`
	TicketCodes    []string  `json:"ticket_codes,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// enqueueOrderEvent writes to the outbox in the caller's transaction. Delivery happens later
// and never affects the order.
func enqueueOrderEvent(ctx context.Context, tx shared.Tx, topic, kind string, o *order.Order, reason string, tickets []*ticket.Ticket, now time.Time) error {
	ev := OrderEvent{
		Type:           kind,
		OrderID:        o.ID().String(),
		BuyerID:        o.BuyerID().String(),
		EventID:        o.EventID().String(),
		Status:         o.Status().String(),
		Total:          o.Total().Minor(),
		RefundedAmount: o.RefundedAmount().Minor(),
		Currency:       o.Currency(),
		Reason:         reason,
		OccurredAt:     now,
	}
	for _, t := range tickets {
		ev.TicketCodes = append(ev.TicketCodes, t.Code())
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return tx.Notifications().CreateJob(ctx, tx.DB(), shared.NewNotificationJob{
		Kind:    kind,
		Topic:   topic,
		Key:     o.ID().String(),
		Payload: payload,
		RunAt:   now,
	})
}
