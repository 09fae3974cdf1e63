package promotion

import (
	"errors"
	"regexp"
	"strings"

	"event-ticketing/internal/domain/money"
)

var (
	ErrInvalidCode          = errors.New("invalid voucher code format")
	ErrInvalidDiscountType  = errors.New("invalid discount type")
	ErrInvalidAppliesTo     = errors.New("invalid discount target")
	ErrInvalidDiscountValue = errors.New("discount value out of range")
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

// Code is a normalized voucher code: trimmed and upper-cased.
type Code string

func NewCode(raw string) (Code, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !codeRegex.MatchString(code) {
		return Code(""), ErrInvalidCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type DiscountType string

const (
	// DiscountPercent values are basis points, 10000 = 100%.
	DiscountPercent DiscountType = "PERCENT"
	// DiscountFixed values are minor currency units.
	DiscountFixed DiscountType = "FIXED"
)

type AppliesTo string

const (
	AppliesToOrder AppliesTo = "ORDER"
	AppliesToItem  AppliesTo = "ITEM"
)

type Discount struct {
	kind  DiscountType
	value int64
}

func NewDiscount(kind DiscountType, value int64) (Discount, error) {
	switch kind {
	case DiscountPercent:
		if value < 0 || value > money.BasisPointsScale {
			return Discount{}, ErrInvalidDiscountValue
		}
	case DiscountFixed:
		if value < 0 {
			return Discount{}, ErrInvalidDiscountValue
		}
	default:
		return Discount{}, ErrInvalidDiscountType
	}
	return Discount{kind: kind, value: value}, nil
}

func (d Discount) Type() DiscountType { return d.kind }
func (d Discount) Value() int64       { return d.value }

// AmountOff never exceeds the base it is applied to.
func (d Discount) AmountOff(base money.Money) money.Money {
	if !base.GreaterThan(money.Zero()) {
		return money.Zero()
	}
	var off money.Money
	switch d.kind {
	case DiscountPercent:
		off = base.BasisPoints(d.value)
	case DiscountFixed:
		off = money.New(d.value)
	}
	return off.Min(base).ClampZero()
}
