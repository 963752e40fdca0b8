package cash

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// CoinMover moves value between accounts. This is the only way custody
// extensions transfer value.
type CoinMover interface {
	MoveCoins(ctx custody.Context, db custody.KVStore, src, dest custody.Address, amount coin.Coin) error
}

// WeightProvider returns historical balances and supplies.
type WeightProvider interface {
	// WeightAt returns the balance of the ticker held by addr at time t.
	WeightAt(db custody.ReadOnlyKVStore, ticker string, addr custody.Address, t custody.UnixTime) (int64, error)
	// SupplyAt returns the amount of the ticker issued at time t.
	SupplyAt(db custody.ReadOnlyKVStore, ticker string, t custody.UnixTime) (int64, error)
}

// Controller is the functionality needed by cash.Handler and by other
// extensions moving value.
type Controller interface {
	CoinMover
	WeightProvider
	Balance(db custody.ReadOnlyKVStore, addr custody.Address) (coin.Coins, error)
	IssueCoins(ctx custody.Context, db custody.KVStore, dest custody.Address, amount coin.Coin) error
}

// BaseController is the default implementation of Controller.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller using the given bucket.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the current coins of addr.
func (c BaseController) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (coin.Coins, error) {
	return c.bucket.Balance(db, addr)
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't have sufficient coins, it fails.
func (c BaseController) MoveCoins(ctx custody.Context, db custody.KVStore, src, dest custody.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive transfer")
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}

	sender, err := c.bucket.Balance(db, src)
	if err != nil {
		return errors.Wrap(err, "sender")
	}
	if !sender.Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s cannot cover %s", src, amount)
	}
	if src.Equals(dest) {
		return nil
	}
	if err := c.apply(db, src, amount.Negative(), now); err != nil {
		return errors.Wrap(err, "sender")
	}
	if err := c.apply(db, dest, amount, now); err != nil {
		return errors.Wrap(err, "recipient")
	}
	custody.GetLogger(ctx).Debug("coins moved", "src", src, "dest", dest, "amount", amount)
	return nil
}

// IssueCoins creates new coins in the dest account, increasing the supply
// of the ticker.
func (c BaseController) IssueCoins(ctx custody.Context, db custody.KVStore, dest custody.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive issue")
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	supply, err := c.SupplyAt(db, amount.Ticker, now)
	if err != nil {
		return err
	}
	total, err := coin.NewCoin(supply, amount.Ticker).Add(amount)
	if err != nil {
		return errors.Wrap(err, "supply")
	}
	if err := c.apply(db, dest, amount, now); err != nil {
		return err
	}
	return writeCheckpoint(db, supplyPrefix(amount.Ticker), now, total.Amount)
}

func (c BaseController) apply(db custody.KVStore, addr custody.Address, delta coin.Coin, now custody.UnixTime) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	current, err := c.bucket.Balance(db, addr)
	if err != nil {
		return err
	}
	updated, err := current.Add(delta)
	if err != nil {
		return err
	}
	if !updated.IsNonNegative() {
		return errors.Wrap(errors.ErrInsufficientAmount, "negative balance")
	}
	if _, err := c.bucket.Put(db, addr, &Set{Coins: updated}); err != nil {
		return err
	}
	return writeCheckpoint(db, weightPrefix(delta.Ticker, addr), now, updated.Balance(delta.Ticker))
}

func (c BaseController) WeightAt(db custody.ReadOnlyKVStore, ticker string, addr custody.Address, t custody.UnixTime) (int64, error) {
	return readAt(db, weightPrefix(ticker, addr), t)
}

func (c BaseController) SupplyAt(db custody.ReadOnlyKVStore, ticker string, t custody.UnixTime) (int64, error) {
	return readAt(db, supplyPrefix(ticker), t)
}
