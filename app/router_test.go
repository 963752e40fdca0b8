package app

import (
	"context"
	"testing"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/custodytest"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/store"
	"github.com/chidioffor/crypto-hybrid-sub000/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	r := NewRouter()
	good := &custodytest.Handler{DeliverResult: custody.DeliverResult{Log: "good"}}
	bad := &custodytest.Handler{DeliverErr: errors.ErrState}
	r.Handle(&custodytest.Msg{RoutePath: "test/good"}, good)
	r.Handle(&custodytest.Msg{RoutePath: "test/bad"}, bad)

	assert.Panics(t, func() { r.Handle(&custodytest.Msg{RoutePath: "test/good"}, good) }, "duplicate")
	assert.Panics(t, func() { r.Handle(&custodytest.Msg{RoutePath: "l:7"}, good) }, "invalid path")
	assert.ElementsMatch(t, []string{"test/good", "test/bad"}, r.Paths())

	ctx := context.Background()
	db := store.MemStore()
	tx := func(path string) custody.Tx {
		return &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: path}}
	}

	_, err := r.Check(ctx, db, tx("test/good"))
	assert.NoError(t, err)
	res, err := r.Deliver(ctx, db, tx("test/good"))
	require.NoError(t, err)
	assert.Equal(t, "good", res.Log)
	assert.Equal(t, 2, good.CallCount())

	_, err = r.Deliver(ctx, db, tx("test/bad"))
	assert.True(t, errors.ErrState.Is(err))

	_, err = r.Deliver(ctx, db, tx("test/missing"))
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = r.Check(ctx, db, tx("test/missing"))
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = r.Deliver(ctx, db, &custodytest.Tx{Err: errors.ErrMsg})
	assert.True(t, errors.ErrMsg.Is(err))
}

func TestRouterInvoke(t *testing.T) {
	r := NewRouter()
	h := &custodytest.Handler{}
	r.Handle(&cash.SendMsg{}, h)

	ctx := context.Background()
	db := store.MemStore()
	src, dst := custodytest.RandomAddr(t), custodytest.RandomAddr(t)

	valid := custody.MustMarshalBinary(&cash.SendMsg{Source: src, Destination: dst, Amount: coin.NewCoinp(1, "GOV")})
	_, err := r.Invoke(ctx, db, "cash/send", valid)
	require.NoError(t, err)
	assert.Equal(t, 1, h.DeliverCallCount())

	invalid := custody.MustMarshalBinary(&cash.SendMsg{Source: src, Destination: dst})
	_, err = r.Invoke(ctx, db, "cash/send", invalid)
	assert.Error(t, err)

	_, err = r.Invoke(ctx, db, "cash/send", []byte{0xff, 0x01})
	assert.Error(t, err)

	_, err = r.Invoke(ctx, db, "cash/burn", valid)
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.Equal(t, 1, h.DeliverCallCount())
}
