package coin

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// IsCC reports whether s is a valid ticker: three or four upper case
// letters.
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

// MaxInt bounds every amount, so that adding two valid amounts never
// overflows int64.
const MaxInt int64 = 999999999999999999

// Coin is an amount of one fungible asset. The ticker identifies the
// asset, native or token. Amounts are whole units.
type Coin struct {
	Ticker string `json:"ticker"`
	Amount int64  `json:"amount"`
}

func NewCoin(amount int64, ticker string) Coin {
	return Coin{Ticker: ticker, Amount: amount}
}

// NewCoinp is NewCoin for optional message fields.
func NewCoinp(amount int64, ticker string) *Coin {
	return &Coin{Ticker: ticker, Amount: amount}
}

// ParseCoin reads the text form "<amount> <ticker>", for example
// "5000 GOV".
func ParseCoin(s string) (Coin, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Coin{}, errors.Wrapf(errors.ErrInput, "coin %q, want \"<amount> <ticker>\"", s)
	}
	amount, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrAmount, "amount %q", fields[0])
	}
	c := Coin{Ticker: fields[1], Amount: amount}
	if err := c.Validate(); err != nil {
		return Coin{}, err
	}
	return c, nil
}

func (c Coin) String() string {
	return fmt.Sprintf("%d %s", c.Amount, c.Ticker)
}

// UnmarshalJSON accepts the text form as well as the object form.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var text string
	if json.Unmarshal(raw, &text) == nil {
		parsed, err := ParseCoin(text)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	// The alias drops this method and avoids the recursion.
	type plain Coin
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Wrapf(errors.ErrInput, "coin: %s", err)
	}
	*c = Coin(p)
	return nil
}

// Add fails on different tickers and on results beyond MaxInt. A zero
// coin without a ticker is neutral.
func (c Coin) Add(o Coin) (Coin, error) {
	switch {
	case c.Ticker == "" && c.IsZero():
		return o, nil
	case o.Ticker == "" && o.IsZero():
		return c, nil
	case c.Ticker != o.Ticker:
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "cannot add %s to %s", o.Ticker, c.Ticker)
	}
	sum := c.Amount + o.Amount
	if sum > MaxInt || sum < -MaxInt {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", c, o)
	}
	return Coin{Ticker: c.Ticker, Amount: sum}, nil
}

func (c Coin) Negative() Coin {
	return Coin{Ticker: c.Ticker, Amount: -c.Amount}
}

func (c Coin) Subtract(o Coin) (Coin, error) {
	return c.Add(o.Negative())
}

func (c Coin) Equals(o Coin) bool {
	return c == o
}

// IsEmpty is true for a missing or zero coin.
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

func (c Coin) IsZero() bool { return c.Amount == 0 }

func (c Coin) IsPositive() bool { return c.Amount > 0 }

func (c Coin) IsNonNegative() bool { return c.Amount >= 0 }

// IsGTE is true if o has the same ticker and c covers it.
func (c Coin) IsGTE(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount >= o.Amount
}

func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Validate checks the ticker and the range. Negative amounts are valid
// coins; handlers require positive values where it matters.
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "ticker %q", c.Ticker)
	}
	if c.Amount > MaxInt || c.Amount < -MaxInt {
		return errors.Wrapf(errors.ErrOverflow, "amount %d", c.Amount)
	}
	return nil
}

// SplitFee divides the coin into the part paid out and the fee kept at the
// given rate. The fee is rounded down, so payout + fee always equals the
// coin exactly. The rate must be within [0, 1].
func (c Coin) SplitFee(rate custody.Fraction) (payout Coin, fee Coin, err error) {
	if err := rate.ValidateRatio(); err != nil {
		return Coin{}, Coin{}, errors.Wrap(err, "fee rate")
	}
	if !c.IsNonNegative() {
		return Coin{}, Coin{}, errors.Wrap(errors.ErrAmount, "negative amount")
	}
	f, err := rate.MulFloor(c.Amount)
	if err != nil {
		return Coin{}, Coin{}, err
	}
	return NewCoin(c.Amount-f, c.Ticker), NewCoin(f, c.Ticker), nil
}
