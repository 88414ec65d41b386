// Package mediatime provides a rational media timestamp.
//
// A Time is value/scale seconds, plus the non-numeric values Invalid,
// Indefinite, PositiveInfinity and NegativeInfinity. Track timescales from
// MP4 files (e.g. 90000, 48000) are represented exactly.
package mediatime

import (
	"fmt"
	"math"
	"math/big"
	"time"
)

type kind uint8

const (
	kindInvalid kind = iota
	kindNumeric
	kindIndefinite
	kindPosInf
	kindNegInf
)

// NanoScale is the timescale used for values converted from time.Duration.
const NanoScale int32 = 1_000_000_000

// Time is a media timestamp. The zero value is Invalid.
type Time struct {
	value int64
	scale int32
	kind  kind
}

var (
	Invalid          = Time{}
	Zero             = Time{value: 0, scale: 1, kind: kindNumeric}
	Indefinite       = Time{kind: kindIndefinite}
	PositiveInfinity = Time{kind: kindPosInf}
	NegativeInfinity = Time{kind: kindNegInf}
)

// Make returns value/scale seconds. A non-positive scale yields Invalid.
func Make(value int64, scale int32) Time {
	if scale <= 0 {
		return Invalid
	}
	return Time{value: value, scale: scale, kind: kindNumeric}
}

// FromDuration converts a time.Duration using NanoScale.
func FromDuration(d time.Duration) Time {
	return Make(int64(d), NanoScale)
}

// FromSeconds converts floating point seconds at the given scale.
func FromSeconds(s float64, scale int32) Time {
	switch {
	case math.IsNaN(s):
		return Invalid
	case math.IsInf(s, 1):
		return PositiveInfinity
	case math.IsInf(s, -1):
		return NegativeInfinity
	}
	return Make(int64(math.Round(s*float64(scale))), scale)
}

func (t Time) Value() int64 { return t.value }
func (t Time) Scale() int32 { return t.scale }

func (t Time) IsValid() bool            { return t.kind != kindInvalid }
func (t Time) IsNumeric() bool          { return t.kind == kindNumeric }
func (t Time) IsIndefinite() bool       { return t.kind == kindIndefinite }
func (t Time) IsPositiveInfinity() bool { return t.kind == kindPosInf }
func (t Time) IsNegativeInfinity() bool { return t.kind == kindNegInf }

// IsZero reports whether t is a numeric zero.
func (t Time) IsZero() bool { return t.kind == kindNumeric && t.value == 0 }

// Seconds returns t in seconds. Non-numeric values map to ±Inf or NaN.
func (t Time) Seconds() float64 {
	switch t.kind {
	case kindNumeric:
		return float64(t.value) / float64(t.scale)
	case kindPosInf:
		return math.Inf(1)
	case kindNegInf:
		return math.Inf(-1)
	default:
		return math.NaN()
	}
}

// Duration converts t to a time.Duration, saturating at the int64 range.
// Invalid and Indefinite convert to 0.
func (t Time) Duration() time.Duration {
	switch t.kind {
	case kindPosInf:
		return time.Duration(math.MaxInt64)
	case kindNegInf:
		return time.Duration(math.MinInt64)
	case kindNumeric:
	default:
		return 0
	}
	if t.scale == NanoScale {
		return time.Duration(t.value)
	}
	n := new(big.Int).Mul(big.NewInt(t.value), big.NewInt(int64(NanoScale)))
	n.Quo(n, big.NewInt(int64(t.scale)))
	if !n.IsInt64() {
		if n.Sign() > 0 {
			return time.Duration(math.MaxInt64)
		}
		return time.Duration(math.MinInt64)
	}
	return time.Duration(n.Int64())
}

// Convert rescales t to scale, rounding half away from zero.
func (t Time) Convert(scale int32) Time {
	if t.kind != kindNumeric || scale == t.scale {
		return t
	}
	if scale <= 0 {
		return Invalid
	}
	return fromRat(t.rat(), scale)
}

// Compare orders times the way platform media clocks do:
// -Inf < numeric < Indefinite < +Inf < Invalid.
func (t Time) Compare(u Time) int {
	rt, ru := t.rank(), u.rank()
	if rt != ru {
		if rt < ru {
			return -1
		}
		return 1
	}
	if t.kind != kindNumeric {
		return 0
	}
	if t.scale == u.scale {
		switch {
		case t.value < u.value:
			return -1
		case t.value > u.value:
			return 1
		}
		return 0
	}
	return t.rat().Cmp(u.rat())
}

func (t Time) rank() int {
	switch t.kind {
	case kindNegInf:
		return 0
	case kindNumeric:
		return 1
	case kindIndefinite:
		return 2
	case kindPosInf:
		return 3
	default:
		return 4
	}
}

func (t Time) Before(u Time) bool { return t.Compare(u) < 0 }
func (t Time) After(u Time) bool  { return t.Compare(u) > 0 }
func (t Time) Equal(u Time) bool  { return t.Compare(u) == 0 }

// Add returns t+u. The result of two numeric times uses their least common
// timescale when it fits in an int32, the larger one otherwise.
func (t Time) Add(u Time) Time {
	if t.kind == kindNumeric && u.kind == kindNumeric {
		scale := commonScale(t.scale, u.scale)
		return fromRat(new(big.Rat).Add(t.rat(), u.rat()), scale)
	}
	return combine(t, u)
}

// Sub returns t-u.
func (t Time) Sub(u Time) Time {
	return t.Add(u.Neg())
}

// Neg returns -t.
func (t Time) Neg() Time {
	switch t.kind {
	case kindNumeric:
		if t.value == math.MinInt64 {
			return PositiveInfinity
		}
		return Time{value: -t.value, scale: t.scale, kind: kindNumeric}
	case kindPosInf:
		return NegativeInfinity
	case kindNegInf:
		return PositiveInfinity
	default:
		return t
	}
}

// Steps returns floor(t/step) for numeric t and positive numeric step.
func Steps(t, step Time) int64 {
	if !t.IsNumeric() || !step.IsNumeric() || step.value <= 0 {
		return 0
	}
	q := new(big.Rat).Quo(t.rat(), step.rat())
	n := new(big.Int).Div(q.Num(), q.Denom()) // Euclidean, floors for positive denominators
	if !n.IsInt64() {
		return 0
	}
	return n.Int64()
}

// Multiply returns t*n.
func (t Time) Multiply(n int64) Time {
	if t.kind != kindNumeric {
		if n < 0 {
			return t.Neg()
		}
		return t
	}
	p := new(big.Int).Mul(big.NewInt(t.value), big.NewInt(n))
	if !p.IsInt64() {
		if p.Sign() > 0 {
			return PositiveInfinity
		}
		return NegativeInfinity
	}
	return Time{value: p.Int64(), scale: t.scale, kind: kindNumeric}
}

// Min returns the smaller of a and b.
func Min(a, b Time) Time {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the larger of a and b.
func Max(a, b Time) Time {
	if b.After(a) {
		return b
	}
	return a
}

func (t Time) String() string {
	switch t.kind {
	case kindNumeric:
		return fmt.Sprintf("%d/%d (%.3fs)", t.value, t.scale, t.Seconds())
	case kindIndefinite:
		return "indefinite"
	case kindPosInf:
		return "+inf"
	case kindNegInf:
		return "-inf"
	default:
		return "invalid"
	}
}

func (t Time) rat() *big.Rat {
	return new(big.Rat).SetFrac(big.NewInt(t.value), big.NewInt(int64(t.scale)))
}

func fromRat(r *big.Rat, scale int32) Time {
	n := new(big.Int).Mul(r.Num(), big.NewInt(int64(scale)))
	d := r.Denom()
	q, m := new(big.Int).QuoRem(n, d, new(big.Int))
	// round half away from zero
	if new(big.Int).Mul(new(big.Int).Abs(m), big.NewInt(2)).Cmp(d) >= 0 {
		if n.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	if !q.IsInt64() {
		if q.Sign() > 0 {
			return PositiveInfinity
		}
		return NegativeInfinity
	}
	return Make(q.Int64(), scale)
}

func combine(t, u Time) Time {
	if t.kind == kindInvalid || u.kind == kindInvalid {
		return Invalid
	}
	inf := func(x Time) bool { return x.kind == kindPosInf || x.kind == kindNegInf }
	switch {
	case inf(t) && inf(u):
		if t.kind != u.kind {
			return Invalid
		}
		return t
	case inf(t):
		return t
	case inf(u):
		return u
	}
	return Indefinite
}

func commonScale(a, b int32) int32 {
	if a == b {
		return a
	}
	g := gcd(int64(a), int64(b))
	l := int64(a) / g * int64(b)
	if l <= math.MaxInt32 {
		return int32(l)
	}
	return max(a, b)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
