// Package money holds amounts in minor currency units.
package money

const BasisPointsScale = 10000

type Money struct {
	minor int64
}

func New(minor int64) Money {
	return Money{minor: minor}
}

func Zero() Money {
	return Money{}
}

func (m Money) Minor() int64 { return m.minor }

func (m Money) IsZero() bool { return m.minor == 0 }

func (m Money) IsNegative() bool { return m.minor < 0 }

func (m Money) Add(other Money) Money {
	return Money{minor: m.minor + other.minor}
}

func (m Money) Sub(other Money) Money {
	return Money{minor: m.minor - other.minor}
}

func (m Money) Times(n int64) Money {
	return Money{minor: m.minor * n}
}

// BasisPoints returns m * bps / 10000, truncated toward zero.
func (m Money) BasisPoints(bps int64) Money {
	return Money{minor: m.minor * bps / BasisPointsScale}
}

func (m Money) Min(other Money) Money {
	if other.minor < m.minor {
		return other
	}
	return m
}

func (m Money) ClampZero() Money {
	if m.minor < 0 {
		return Zero()
	}
	return m
}

func (m Money) GreaterThan(other Money) bool {
	return m.minor > other.minor
}
