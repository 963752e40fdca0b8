package cash

import (
	"testing"
	"time"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/custodytest"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveCoins(t *testing.T) {
	alice := custodytest.RandomAddr(t)
	bob := custodytest.RandomAddr(t)
	now := time.Unix(1000, 0)
	ctx := custodytest.BlockCtx(1, now)

	db := store.MemStore()
	c := NewController(NewBucket())
	require.NoError(t, c.IssueCoins(ctx, db, alice, coin.NewCoin(100, "USD")))

	cases := map[string]struct {
		src     custody.Address
		dest    custody.Address
		amount  coin.Coin
		wantErr *errors.Error
	}{
		"zero amount":       {src: alice, dest: bob, amount: coin.NewCoin(0, "USD"), wantErr: errors.ErrAmount},
		"negative amount":   {src: alice, dest: bob, amount: coin.NewCoin(-1, "USD"), wantErr: errors.ErrAmount},
		"bad ticker":        {src: alice, dest: bob, amount: coin.NewCoin(1, "iov"), wantErr: errors.ErrCurrency},
		"empty sender":      {src: bob, dest: alice, amount: coin.NewCoin(1, "USD"), wantErr: errors.ErrInsufficientAmount},
		"other ticker":      {src: alice, dest: bob, amount: coin.NewCoin(1, "ETH"), wantErr: errors.ErrInsufficientAmount},
		"more than balance": {src: alice, dest: bob, amount: coin.NewCoin(101, "USD"), wantErr: errors.ErrInsufficientAmount},
		"invalid recipient": {src: alice, dest: custody.Address("bad"), amount: coin.NewCoin(1, "USD"), wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			cache := db.CacheWrap()
			defer cache.Discard()
			err := c.MoveCoins(ctx, cache, tc.src, tc.dest, tc.amount)
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}

	require.NoError(t, c.MoveCoins(ctx, db, alice, bob, coin.NewCoin(40, "USD")))
	aliceCoins, err := c.Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(60), aliceCoins.Balance("USD"))
	bobCoins, err := c.Balance(db, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(40), bobCoins.Balance("USD"))

	// spending everything leaves an empty but valid wallet
	require.NoError(t, c.MoveCoins(ctx, db, bob, alice, coin.NewCoin(40, "USD")))
	bobCoins, err = c.Balance(db, bob)
	require.NoError(t, err)
	assert.True(t, bobCoins.IsEmpty())

	_, err = c.Balance(db, custodytest.RandomAddr(t))
	assert.NoError(t, err)
}

func TestMoveCoinsRequiresBlockTime(t *testing.T) {
	db := store.MemStore()
	c := NewController(NewBucket())
	err := c.IssueCoins(custodytest.BlockCtx(1, time.Unix(1, 0)), db, custodytest.RandomAddr(t), coin.NewCoin(1, "USD"))
	require.NoError(t, err)

	err = c.MoveCoins(custody.WithHeight(custodyCtx(), 2), db, custodytest.RandomAddr(t), custodytest.RandomAddr(t), coin.NewCoin(1, "USD"))
	assert.True(t, errors.ErrHuman.Is(err), "got %v", err)
}

func TestWeightCheckpoints(t *testing.T) {
	alice := custodytest.RandomAddr(t)
	bob := custodytest.RandomAddr(t)
	db := store.MemStore()
	c := NewController(NewBucket())

	at := func(sec int64) custody.Context { return custodytest.BlockCtx(sec, time.Unix(sec, 0)) }

	require.NoError(t, c.IssueCoins(at(100), db, alice, coin.NewCoin(1000, "GOV")))
	require.NoError(t, c.IssueCoins(at(100), db, bob, coin.NewCoin(500, "GOV")))
	require.NoError(t, c.MoveCoins(at(200), db, alice, bob, coin.NewCoin(300, "GOV")))
	// two changes in one block leave the last balance
	require.NoError(t, c.MoveCoins(at(300), db, bob, alice, coin.NewCoin(100, "GOV")))
	require.NoError(t, c.MoveCoins(at(300), db, bob, alice, coin.NewCoin(100, "GOV")))
	require.NoError(t, c.IssueCoins(at(400), db, bob, coin.NewCoin(1, "GOV")))

	cases := map[string]struct {
		addr custody.Address
		at   custody.UnixTime
		want int64
	}{
		"before anything":        {addr: alice, at: 99, want: 0},
		"at issue":               {addr: alice, at: 100, want: 1000},
		"between checkpoints":    {addr: alice, at: 199, want: 1000},
		"at transfer":            {addr: alice, at: 200, want: 700},
		"recipient after":        {addr: bob, at: 250, want: 800},
		"last change in a block": {addr: bob, at: 300, want: 600},
		"after everything":       {addr: bob, at: 10000, want: 601},
		"unknown account":        {addr: custodytest.RandomAddr(t), at: 300, want: 0},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := c.WeightAt(db, "GOV", tc.addr, tc.at)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	supply, err := c.SupplyAt(db, "GOV", 399)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), supply)
	supply, err = c.SupplyAt(db, "GOV", 400)
	require.NoError(t, err)
	assert.Equal(t, int64(1501), supply)
	supply, err = c.SupplyAt(db, "ETH", 400)
	require.NoError(t, err)
	assert.Equal(t, int64(0), supply)

	// another ticker does not leak into the weight
	require.NoError(t, c.IssueCoins(at(500), db, alice, coin.NewCoin(5, "ETH")))
	w, err := c.WeightAt(db, "GOV", alice, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(900), w)
}
