package custody

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/shopspring/decimal"
)

// Fraction is a non negative rational number. It is used for fee rates and
// quorum requirements, where exact integer arithmetic matters.
type Fraction struct {
	Numerator   uint32 `json:"numerator"`
	Denominator uint32 `json:"denominator"`
}

// NewFraction returns the fraction num/den reduced to lowest terms.
func NewFraction(num, den uint32) Fraction {
	if den == 0 {
		return Fraction{Numerator: num}
	}
	if num == 0 {
		return Fraction{Numerator: 0, Denominator: 1}
	}
	g := gcd(num, den)
	return Fraction{Numerator: num / g, Denominator: den / g}
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ParseFraction reads a fraction from one of the human readable forms:
// a ratio ("1/25"), a decimal ("0.04") or a percentage ("4%").
func ParseFraction(s string) (Fraction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Fraction{}, errors.Wrap(errors.ErrEmpty, "fraction")
	}

	if chunks := strings.Split(s, "/"); len(chunks) == 2 {
		num, err := strconv.ParseUint(strings.TrimSpace(chunks[0]), 10, 32)
		if err != nil {
			return Fraction{}, errors.Wrap(errors.ErrInput, "numerator")
		}
		den, err := strconv.ParseUint(strings.TrimSpace(chunks[1]), 10, 32)
		if err != nil {
			return Fraction{}, errors.Wrap(errors.ErrInput, "denominator")
		}
		if den == 0 {
			return Fraction{}, errors.Wrap(errors.ErrInput, "zero denominator")
		}
		return NewFraction(uint32(num), uint32(den)), nil
	}

	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Fraction{}, errors.Wrapf(errors.ErrInput, "fraction %q", s)
	}
	if d.IsNegative() {
		return Fraction{}, errors.Wrap(errors.ErrInput, "negative fraction")
	}

	num := new(big.Int).Set(d.Coefficient())
	den := big.NewInt(1)
	if exp := d.Exponent(); exp < 0 {
		den.Exp(big.NewInt(10), big.NewInt(int64(-exp)), nil)
	} else {
		num.Mul(num, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	}
	if percent {
		den.Mul(den, big.NewInt(100))
	}
	if num.Sign() == 0 {
		return Fraction{Numerator: 0, Denominator: 1}, nil
	}
	g := new(big.Int).GCD(nil, nil, num, den)
	num.Quo(num, g)
	den.Quo(den, g)
	if !num.IsUint64() || num.Uint64() > math.MaxUint32 || den.Uint64() > math.MaxUint32 {
		return Fraction{}, errors.Wrapf(errors.ErrOverflow, "fraction %q is too precise", s)
	}
	return Fraction{Numerator: uint32(num.Uint64()), Denominator: uint32(den.Uint64())}, nil
}

// String returns a human readable fraction representation.
func (f Fraction) String() string {
	if f.Numerator == 0 {
		return "0"
	}
	if f.Denominator == 1 {
		return fmt.Sprint(f.Numerator)
	}
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// MarshalJSON serializes the fraction as a "num/den" string.
func (f Fraction) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%d/%d", f.Numerator, f.Denominator))
}

// UnmarshalJSON accepts any form ParseFraction accepts, as well as the
// object notation.
func (f *Fraction) UnmarshalJSON(raw []byte) error {
	// Prioritize human readable format.
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		frac, err := ParseFraction(human)
		if err != nil {
			return errors.Wrap(err, "fraction string")
		}
		*f = frac
		return nil
	}

	var frac struct {
		Numerator   uint32
		Denominator uint32
	}
	if err := json.Unmarshal(raw, &frac); err != nil {
		return errors.Wrap(errors.ErrInput, "fraction")
	}
	f.Numerator = frac.Numerator
	f.Denominator = frac.Denominator
	return nil
}

// Validate returns an error if this fraction represents an invalid value.
func (f Fraction) Validate() error {
	if f.Denominator == 0 {
		return errors.Wrap(errors.ErrInput, "zero denominator")
	}
	return nil
}

// ValidateRatio additionally requires the fraction to be within [0, 1].
func (f Fraction) ValidateRatio() error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Numerator > f.Denominator {
		return errors.Wrap(errors.ErrInput, "fraction greater than one")
	}
	return nil
}

// IsZero returns true if the fraction represents zero.
func (f Fraction) IsZero() bool {
	return f.Numerator == 0
}

// MulFloor returns floor(n * f). The intermediate product is computed
// without overflow.
func (f Fraction) MulFloor(n int64) (int64, error) {
	if f.Denominator == 0 {
		return 0, errors.Wrap(errors.ErrInput, "zero denominator")
	}
	res := new(big.Int).Mul(big.NewInt(n), big.NewInt(int64(f.Numerator)))
	res.Div(res, big.NewInt(int64(f.Denominator)))
	if !res.IsInt64() {
		return 0, errors.Wrap(errors.ErrOverflow, "fraction product")
	}
	return res.Int64(), nil
}

// Reached returns true if part is at least f of total, that is
// part * den >= total * num.
func (f Fraction) Reached(part, total int64) bool {
	lhs := new(big.Int).Mul(big.NewInt(part), big.NewInt(int64(f.Denominator)))
	rhs := new(big.Int).Mul(big.NewInt(total), big.NewInt(int64(f.Numerator)))
	return lhs.Cmp(rhs) >= 0
}
