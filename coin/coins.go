package coin

import (
	"sort"
	"strings"

	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// Coins is a set of coins of distinct tickers, sorted by ticker. A wallet
// balance is always a normalized Coins value: no zero entries and no
// duplicated tickers.
type Coins []*Coin

// CombineCoins creates a normalized Coins from the given coins.
func CombineCoins(cs ...Coin) (Coins, error) {
	var res Coins
	for _, c := range cs {
		var err error
		res, err = res.Add(c)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Clone returns a deep copy.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Add returns a new Coins with the given coin added. Zero results are
// removed from the set.
func (cs Coins) Add(c Coin) (Coins, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	res := cs.Clone()
	i := sort.Search(len(res), func(i int) bool { return res[i].Ticker >= c.Ticker })
	if i < len(res) && res[i].Ticker == c.Ticker {
		sum, err := res[i].Add(c)
		if err != nil {
			return nil, err
		}
		if sum.IsZero() {
			return append(res[:i], res[i+1:]...), nil
		}
		res[i] = &sum
		return res, nil
	}
	if c.IsZero() {
		return res, nil
	}
	res = append(res, nil)
	copy(res[i+1:], res[i:])
	res[i] = c.Clone()
	return res, nil
}

// Subtract returns a new Coins with the given coin subtracted.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	return cs.Add(c.Negative())
}

// Balance returns the amount of the given ticker.
func (cs Coins) Balance(ticker string) int64 {
	for _, c := range cs {
		if c.Ticker == ticker {
			return c.Amount
		}
	}
	return 0
}

// Contains returns true if there is at least that much coin in the set.
func (cs Coins) Contains(c Coin) bool {
	return cs.Balance(c.Ticker) >= c.Amount
}

// IsEmpty returns if nothing is in the set
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// IsNonNegative returns true if all coins are non negative.
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsNonNegative() {
			return false
		}
	}
	return true
}

// Equals returns true if both sets hold exactly the same coins.
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate requires that all coins are valid, positive, and sorted by a
// unique ticker.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if c == nil {
			return errors.Wrap(errors.ErrEmpty, "nil coin")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if !c.IsPositive() {
			return errors.Wrapf(errors.ErrAmount, "%s must be positive", c)
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrCurrency, "coins not sorted by unique ticker")
		}
	}
	return nil
}

func (cs Coins) String() string {
	if len(cs) == 0 {
		return "(none)"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
