package promotion

import (
	"errors"
	"strings"
	"time"

	"event-ticketing/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrEmptyName     = errors.New("promotion name is required")
	ErrInvalidPeriod = errors.New("promotion valid period is inverted")
	ErrInvalidLimit  = errors.New("redemption limits must be positive")
)

type Promotion struct {
	id                  uuid.UUID
	eventID             uuid.UUID
	name                string
	discount            Discount
	appliesTo           AppliesTo
	requiresCode        bool
	validFrom           time.Time
	validUntil          time.Time
	maxRedemptions      *int64
	redeemedCount       int64
	maxPerUser          *int64
	eligibleTicketTypes map[uuid.UUID]struct{}
	createdAt           time.Time
}

type NewPromotionParams struct {
	ID                  uuid.UUID
	EventID             uuid.UUID
	Name                string
	DiscountType        DiscountType
	DiscountValue       int64
	AppliesTo           AppliesTo
	RequiresCode        bool
	ValidFrom           time.Time
	ValidUntil          time.Time
	MaxRedemptions      *int64
	MaxPerUser          *int64
	EligibleTicketTypes []uuid.UUID
	CreatedAt           time.Time
}

func NewPromotion(p NewPromotionParams) (*Promotion, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, ErrEmptyName
	}
	discount, err := NewDiscount(p.DiscountType, p.DiscountValue)
	if err != nil {
		return nil, err
	}
	if p.AppliesTo != AppliesToOrder && p.AppliesTo != AppliesToItem {
		return nil, ErrInvalidAppliesTo
	}
	if p.ValidFrom.After(p.ValidUntil) {
		return nil, ErrInvalidPeriod
	}
	if (p.MaxRedemptions != nil && *p.MaxRedemptions <= 0) || (p.MaxPerUser != nil && *p.MaxPerUser <= 0) {
		return nil, ErrInvalidLimit
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return ReconstructPromotion(id, p.EventID, strings.TrimSpace(p.Name), discount, p.AppliesTo, p.RequiresCode,
		p.ValidFrom, p.ValidUntil, p.MaxRedemptions, 0, p.MaxPerUser, p.EligibleTicketTypes, p.CreatedAt), nil
}

func ReconstructPromotion(
	id, eventID uuid.UUID,
	name string,
	discount Discount,
	appliesTo AppliesTo,
	requiresCode bool,
	validFrom, validUntil time.Time,
	maxRedemptions *int64,
	redeemedCount int64,
	maxPerUser *int64,
	eligibleTicketTypes []uuid.UUID,
	createdAt time.Time,
) *Promotion {
	eligible := make(map[uuid.UUID]struct{}, len(eligibleTicketTypes))
	for _, id := range eligibleTicketTypes {
		eligible[id] = struct{}{}
	}
	return &Promotion{
		id:                  id,
		eventID:             eventID,
		name:                name,
		discount:            discount,
		appliesTo:           appliesTo,
		requiresCode:        requiresCode,
		validFrom:           validFrom,
		validUntil:          validUntil,
		maxRedemptions:      maxRedemptions,
		redeemedCount:       redeemedCount,
		maxPerUser:          maxPerUser,
		eligibleTicketTypes: eligible,
		createdAt:           createdAt,
	}
}

func (p *Promotion) ID() uuid.UUID          { return p.id }
func (p *Promotion) EventID() uuid.UUID     { return p.eventID }
func (p *Promotion) Name() string           { return p.name }
func (p *Promotion) Discount() Discount     { return p.discount }
func (p *Promotion) AppliesTo() AppliesTo   { return p.appliesTo }
func (p *Promotion) RequiresCode() bool     { return p.requiresCode }
func (p *Promotion) ValidFrom() time.Time   { return p.validFrom }
func (p *Promotion) ValidUntil() time.Time  { return p.validUntil }
func (p *Promotion) MaxRedemptions() *int64 { return p.maxRedemptions }
func (p *Promotion) RedeemedCount() int64   { return p.redeemedCount }
func (p *Promotion) MaxPerUser() *int64     { return p.maxPerUser }
func (p *Promotion) CreatedAt() time.Time   { return p.createdAt }

func (p *Promotion) EligibleTicketTypes() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.eligibleTicketTypes))
	for id := range p.eligibleTicketTypes {
		ids = append(ids, id)
	}
	return ids
}

// IsActiveAt uses an inclusive validity window.
func (p *Promotion) IsActiveAt(t time.Time) bool {
	return !t.Before(p.validFrom) && !t.After(p.validUntil)
}

// Covers reports whether a ticket type is eligible. An empty set covers every type.
func (p *Promotion) Covers(ticketTypeID uuid.UUID) bool {
	if len(p.eligibleTicketTypes) == 0 {
		return true
	}
	_, ok := p.eligibleTicketTypes[ticketTypeID]
	return ok
}

func (p *Promotion) HasCapacity() bool {
	return p.maxRedemptions == nil || p.redeemedCount < *p.maxRedemptions
}

type VoucherCode struct {
	id             uuid.UUID
	promotionID    uuid.UUID
	code           Code
	maxRedemptions *int64
	redeemedCount  int64
	createdAt      time.Time
}

func NewVoucherCode(id, promotionID uuid.UUID, raw string, maxRedemptions *int64, createdAt time.Time) (*VoucherCode, error) {
	code, err := NewCode(raw)
	if err != nil {
		return nil, err
	}
	if maxRedemptions != nil && *maxRedemptions <= 0 {
		return nil, ErrInvalidLimit
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &VoucherCode{id: id, promotionID: promotionID, code: code, maxRedemptions: maxRedemptions, createdAt: createdAt}, nil
}

func ReconstructVoucherCode(id, promotionID uuid.UUID, code Code, maxRedemptions *int64, redeemedCount int64, createdAt time.Time) *VoucherCode {
	return &VoucherCode{
		id:             id,
		promotionID:    promotionID,
		code:           code,
		maxRedemptions: maxRedemptions,
		redeemedCount:  redeemedCount,
		createdAt:      createdAt,
	}
}

func (v *VoucherCode) ID() uuid.UUID          { return v.id }
func (v *VoucherCode) PromotionID() uuid.UUID { return v.promotionID }
func (v *VoucherCode) Code() Code             { return v.code }
func (v *VoucherCode) MaxRedemptions() *int64 { return v.maxRedemptions }
func (v *VoucherCode) RedeemedCount() int64   { return v.redeemedCount }
func (v *VoucherCode) CreatedAt() time.Time   { return v.createdAt }

func (v *VoucherCode) HasCapacity() bool {
	return v.maxRedemptions == nil || v.redeemedCount < *v.maxRedemptions
}

// Line is the promotion engine's view of an order line.
type Line struct {
	TicketTypeID uuid.UUID
	Quantity     int64
	LineTotal    money.Money
}

// DiscountFor computes the discount a promotion grants to the given lines.
// ORDER discounts apply once to the subtotal; ITEM discounts apply per eligible line and are summed.
func (p *Promotion) DiscountFor(lines []Line) money.Money {
	subtotal := money.Zero()
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}

	switch p.appliesTo {
	case AppliesToItem:
		total := money.Zero()
		for _, l := range lines {
			if !p.Covers(l.TicketTypeID) {
				continue
			}
			total = total.Add(p.discount.AmountOff(l.LineTotal))
		}
		return total.Min(subtotal)
	default:
		return p.discount.AmountOff(subtotal)
	}
}
