package cash

import (
	"context"
	"encoding/json"
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

func custodyCtx() custody.Context {
	return context.Background()
}

func TestSendHandler(t *testing.T) {
	perm := custodytest.NewCondition()
	perm2 := custodytest.NewCondition()
	dest := custodytest.RandomAddr(t)
	ctx := custodytest.BlockCtx(7, time.Unix(5000, 0))

	cases := map[string]struct {
		signer      custody.Condition
		msg         custody.Msg
		wantCheck   *errors.Error
		wantDeliver *errors.Error
	}{
		"wrong message": {
			signer:      perm,
			msg:         &custodytest.Msg{RoutePath: "cash/send"},
			wantCheck:   errors.ErrType,
			wantDeliver: errors.ErrType,
		},
		"empty amount": {
			signer:      perm,
			msg:         &SendMsg{Source: perm.Address(), Destination: dest},
			wantCheck:   errors.ErrEmpty,
			wantDeliver: errors.ErrEmpty,
		},
		"not signed by source": {
			signer:      perm2,
			msg:         &SendMsg{Source: perm.Address(), Destination: dest, Amount: coin.NewCoinp(5, "USD")},
			wantCheck:   errors.ErrUnauthorized,
			wantDeliver: errors.ErrUnauthorized,
		},
		"insufficient funds": {
			signer:      perm,
			msg:         &SendMsg{Source: perm.Address(), Destination: dest, Amount: coin.NewCoinp(5000, "USD")},
			wantCheck:   errors.ErrInsufficientAmount,
			wantDeliver: errors.ErrInsufficientAmount,
		},
		"success": {
			signer: perm,
			msg:    &SendMsg{Source: perm.Address(), Destination: dest, Amount: coin.NewCoinp(500, "USD"), Memo: "rent"},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			c := NewController(NewBucket())
			require.NoError(t, c.IssueCoins(ctx, db, perm.Address(), coin.NewCoin(1000, "USD")))

			h := NewSendHandler(&custodytest.Auth{Signer: tc.signer}, c)
			tx := &custodytest.Tx{Msg: tc.msg}

			cache := db.CacheWrap()
			_, err := h.Check(ctx, cache, tx)
			assert.True(t, tc.wantCheck.Is(err), "check: %v", err)
			cache.Discard()

			res, err := h.Deliver(ctx, db, tx)
			assert.True(t, tc.wantDeliver.Is(err), "deliver: %v", err)
			if tc.wantDeliver == nil && tc.wantCheck == nil {
				require.NotNil(t, res)
				assert.Len(t, res.Tags, 2)
				got, err := c.Balance(db, dest)
				require.NoError(t, err)
				assert.Equal(t, int64(500), got.Balance("USD"))
			}
		})
	}
}

func TestGenesis(t *testing.T) {
	alice := custodytest.RandomAddr(t)
	bob := custodytest.RandomAddr(t)
	genesis := `{"cash": [
		{"address": "` + alice.String() + `", "coins": ["100 GOV", {"ticker": "ETH", "amount": 3}]},
		{"address": "` + bob.String() + `", "coins": ["50 GOV"]}
	]}`
	var opts custody.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	params := custody.GenesisParams{ChainID: custodytest.ChainID, Time: time.Unix(10, 0)}
	require.NoError(t, Initializer{}.FromGenesis(opts, params, db))

	c := NewController(NewBucket())
	balance, err := c.Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, "3 ETH, 100 GOV", balance.String())

	supply, err := c.SupplyAt(db, "GOV", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(150), supply)
	supply, err = c.SupplyAt(db, "GOV", 9)
	require.NoError(t, err)
	assert.Equal(t, int64(0), supply)

	bad := custody.Options{"cash": json.RawMessage(`[{"address": "", "coins": []}]`)}
	assert.Error(t, Initializer{}.FromGenesis(bad, params, store.MemStore()))
}

func TestSendMsgValidate(t *testing.T) {
	src := custodytest.RandomAddr(t)
	dst := custodytest.RandomAddr(t)
	long := make([]byte, maxMemoSize+1)
	for i := range long {
		long[i] = 'a'
	}

	cases := map[string]struct {
		msg     *SendMsg
		wantErr *errors.Error
	}{
		"valid":       {msg: &SendMsg{Source: src, Destination: dst, Amount: coin.NewCoinp(1, "USD")}},
		"no source":   {msg: &SendMsg{Destination: dst, Amount: coin.NewCoinp(1, "USD")}, wantErr: errors.ErrEmpty},
		"zero amount": {msg: &SendMsg{Source: src, Destination: dst, Amount: coin.NewCoinp(0, "USD")}, wantErr: errors.ErrAmount},
		"long memo":   {msg: &SendMsg{Source: src, Destination: dst, Amount: coin.NewCoinp(1, "USD"), Memo: string(long)}, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}
}
