package app

import (
	"context"
	"testing"

	"github.com/chidioffor/crypto-hybrid-sub000/custodytest"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/store"
	"github.com/chidioffor/crypto-hybrid-sub000/x/utils"
	"github.com/stretchr/testify/assert"
)

func TestChain(t *testing.T) {
	c1 := &custodytest.Decorator{}
	c2 := &custodytest.Decorator{}
	c3 := &custodytest.Decorator{}
	h := &custodytest.Handler{}

	var nilDecorator *custodytest.Decorator
	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		nil,
		utils.NewRecovery(),
		c2,
		nilDecorator,
	).Chain(c3).WithHandler(h)

	ctx := context.Background()
	db := store.MemStore()
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "vault/approve"}}

	_, err := stack.Check(ctx, db, tx)
	assert.NoError(t, err)
	_, err = stack.Deliver(ctx, db, tx)
	assert.NoError(t, err)

	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// a failing decorator stops the chain
	c2.DeliverErr = errors.ErrUnauthorized
	_, err = stack.Deliver(ctx, db, tx)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 3, c1.CallCount())
	assert.Equal(t, 3, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// a panic is turned into an error by the recovery decorator
	c2.DeliverErr = nil
	h.Panic = "boom"
	_, err = stack.Deliver(ctx, db, tx)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Equal(t, 3, c3.CallCount())
}

func TestChainSkipsNilDecorators(t *testing.T) {
	var nilDecorator *custodytest.Decorator
	d := &custodytest.Decorator{}
	chain := ChainDecorators(nil, d, nilDecorator, d, nil)
	assert.Len(t, chain.chain, 2)

	h := &custodytest.Handler{}
	_, err := chain.WithHandler(h).Deliver(context.Background(), store.MemStore(), &custodytest.Tx{})
	assert.NoError(t, err)
	assert.Equal(t, 2, d.CallCount())
	assert.Equal(t, 1, h.CallCount())
}
