package utils_test

import (
	"context"
	"testing"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/custodytest"
	"github.com/chidioffor/crypto-hybrid-sub000/custodytest/assert"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/store"
	"github.com/chidioffor/crypto-hybrid-sub000/x/utils"
	"github.com/tendermint/tendermint/libs/common"
)

func stringTag(key, value string) common.KVPair {
	return common.KVPair{
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func TestActionTagger(t *testing.T) {
	cases := map[string]struct {
		handler custody.Handler
		tx      custody.Tx
		err     *errors.Error
		tags    []common.KVPair
	}{
		"simple call": {
			handler: &custodytest.Handler{},
			tx:      &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "escrow/release"}},
			tags:    []common.KVPair{stringTag(utils.ActionKey, "escrow/release")},
		},
		"passes through error": {
			handler: &custodytest.Handler{DeliverErr: errors.ErrUnauthorized},
			tx:      &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "escrow/release"}},
			err:     errors.ErrUnauthorized,
		},
		"broken transaction": {
			handler: &custodytest.Handler{},
			tx:      &custodytest.Tx{Err: errors.ErrInput},
			err:     errors.ErrInput,
		},
		"tags are additive": {
			handler: &custodytest.Handler{
				DeliverResult: custody.DeliverResult{Tags: []common.KVPair{stringTag("vault", "01")}},
			},
			tx:   &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "vault/execute"}},
			tags: []common.KVPair{stringTag("vault", "01"), stringTag(utils.ActionKey, "vault/execute")},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := custodytest.Decorate(tc.handler, utils.NewActionTagger())
			res, err := h.Deliver(context.Background(), store.MemStore(), tc.tx)
			if tc.err != nil {
				assert.IsErr(t, tc.err, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, len(tc.tags), len(res.Tags))
			for i := range tc.tags {
				assert.Equal(t, string(tc.tags[i].Key), string(res.Tags[i].Key))
				assert.Equal(t, string(tc.tags[i].Value), string(res.Tags[i].Value))
			}
		})
	}
}
