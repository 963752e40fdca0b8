package app

import (
	"fmt"
	"testing"
	"time"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/crypto"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
	"github.com/chidioffor/crypto-hybrid-sub000/x/cash"
	"github.com/chidioffor/crypto-hybrid-sub000/x/utils"
	"github.com/chidioffor/crypto-hybrid-sub000/x/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

const testChainID = "test-net-22"

// chain drives an application through blocks the way tendermint does.
type chain struct {
	t      *testing.T
	app    BaseApp
	height int64
	now    time.Time
	hash   []byte
}

func newChain(t *testing.T, appState string) *chain {
	t.Helper()
	myApp, err := NewApplication(Options{})
	require.NoError(t, err)

	genesisTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	myApp.InitChain(abci.RequestInitChain{
		ChainId:       testChainID,
		Time:          genesisTime,
		AppStateBytes: []byte(appState),
	})
	assert.Equal(t, testChainID, myApp.GetChainID())
	return &chain{t: t, app: myApp, now: genesisTime}
}

// block runs every transaction through check and deliver in a new block
// and commits it.
func (c *chain) block(txs ...[]byte) []abci.ResponseDeliverTx {
	c.t.Helper()
	c.height++
	c.now = c.now.Add(5 * time.Second)
	c.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: c.height, Time: c.now}})

	res := make([]abci.ResponseDeliverTx, len(txs))
	for i, tx := range txs {
		chres := c.app.CheckTx(tx)
		require.Equal(c.t, uint32(0), chres.Code, chres.Log)
		res[i] = c.app.DeliverTx(tx)
		require.Equal(c.t, uint32(0), res[i].Code, res[i].Log)
	}

	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	cres := c.app.Commit()
	require.NotEmpty(c.t, cres.Data)
	assert.NotEqual(c.t, c.hash, cres.Data)
	c.hash = cres.Data
	return res
}

func signedTx(t *testing.T, msg custody.Msg, seq int64, signers ...crypto.PrivateKey) []byte {
	t.Helper()
	tx, err := NewTx(msg, "")
	require.NoError(t, err)
	for _, s := range signers {
		require.NoError(t, tx.Sign(s, testChainID, seq))
	}
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

func balance(t *testing.T, app abci.Application, addr custody.Address) coin.Coins {
	t.Helper()
	qres := app.Query(abci.RequestQuery{Path: "/wallets", Data: addr})
	require.Equal(t, uint32(0), qres.Code, qres.Log)
	var set cash.Set
	require.NoError(t, UnmarshalOneResult(qres.Value, &set))
	return set.Coins
}

func genesis(alice, bob custody.Address) string {
	return fmt.Sprintf(`{
		"cash": [
			{"address": %q, "coins": ["5000 GOV", "20 BTC"]}
		],
		"vaults": [
			{"signers": [%q, %q], "threshold": 2}
		],
		"conf": {
			"vault": {"owner": %q, "max_signers": 10},
			"escrow": {"owner": %q, "fee_sink": %q, "fee_rate": "1%%", "max_milestones": 5},
			"gov": {"owner": %q, "max_actions": 5, "max_description_length": 512}
		}
	}`, alice, alice, bob, alice, alice, bob, alice)
}

func TestApp(t *testing.T) {
	alicePK := crypto.GenPrivKeyEd25519()
	alice := alicePK.PublicKey().Address()
	bobPK := crypto.GenPrivKeyEd25519()
	bob := bobPK.PublicKey().Address()
	carol := crypto.GenPrivKeyEd25519().PublicKey().Address()

	c := newChain(t, genesis(alice, bob))
	c.block()
	assert.Equal(t, coin.Coins{coin.NewCoinp(20, "BTC"), coin.NewCoinp(5000, "GOV")}, balance(t, c.app, alice))

	vaultID := orm.EncodeSequence(1)
	vaultAddr := vault.Condition(vaultID).Address()

	// fund the vault created at genesis
	send := &cash.SendMsg{
		Source:      alice,
		Destination: vaultAddr,
		Amount:      coin.NewCoinp(1200, "GOV"),
		Memo:        "treasury",
	}
	dres := c.block(signedTx(t, send, 0, alicePK))
	assert.Contains(t, dres[0].Tags, tag(utils.ActionKey, "cash/send"))
	assert.Equal(t, coin.Coins{coin.NewCoinp(1200, "GOV")}, balance(t, c.app, vaultAddr))
	assert.Equal(t, coin.Coins{coin.NewCoinp(20, "BTC"), coin.NewCoinp(3800, "GOV")}, balance(t, c.app, alice))

	// move funds out of the vault with both signers
	submit := &vault.SubmitMsg{
		VaultID: vaultID,
		Kind:    vault.ActionTransfer,
		Target:  carol,
		Value:   coin.NewCoinp(700, "GOV"),
	}
	dres = c.block(signedTx(t, submit, 1, alicePK))
	actionID := dres[0].Data
	require.Len(t, actionID, 8)

	c.block(
		signedTx(t, &vault.ApproveMsg{ActionID: actionID}, 2, alicePK),
		signedTx(t, &vault.ApproveMsg{ActionID: actionID}, 0, bobPK),
	)
	dres = c.block(signedTx(t, &vault.ExecuteMsg{ActionID: actionID}, 3, alicePK))
	assert.Contains(t, dres[0].Tags, tag(utils.ActionKey, "vault/execute"))

	assert.Equal(t, coin.Coins{coin.NewCoinp(500, "GOV")}, balance(t, c.app, vaultAddr))
	assert.Equal(t, coin.Coins{coin.NewCoinp(700, "GOV")}, balance(t, c.app, carol))

	// the committed state can be read back through the abci store
	var set cash.Set
	require.NoError(t, cash.NewBucket().One(NewABCIStore(c.app), carol, &set))
	assert.Equal(t, coin.Coins{coin.NewCoinp(700, "GOV")}, set.Coins)

	// executing twice does not move money again
	raw := signedTx(t, &vault.ExecuteMsg{ActionID: actionID}, 4, alicePK)
	chres := c.app.CheckTx(raw)
	assert.NotEqual(t, uint32(0), chres.Code)
}

func TestAppRejects(t *testing.T) {
	alicePK := crypto.GenPrivKeyEd25519()
	alice := alicePK.PublicKey().Address()
	bobPK := crypto.GenPrivKeyEd25519()
	bob := bobPK.PublicKey().Address()

	c := newChain(t, genesis(alice, bob))
	c.block()

	send := &cash.SendMsg{Source: alice, Destination: bob, Amount: coin.NewCoinp(10, "GOV")}
	cases := map[string][]byte{
		"no signature":    signedTx(t, send, 0),
		"wrong signer":    signedTx(t, send, 0, bobPK),
		"wrong sequence":  signedTx(t, send, 3, alicePK),
		"malformed bytes": []byte("not a transaction"),
		"overspend": signedTx(t, &cash.SendMsg{
			Source:      alice,
			Destination: bob,
			Amount:      coin.NewCoinp(5001, "GOV"),
		}, 0, alicePK),
	}

	c.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 2, Time: c.now.Add(time.Second)}})
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			chres := c.app.CheckTx(raw)
			assert.NotEqual(t, uint32(0), chres.Code)
			dres := c.app.DeliverTx(raw)
			assert.NotEqual(t, uint32(0), dres.Code)
			assert.NotEmpty(t, dres.Log)
		})
	}
	c.app.EndBlock(abci.RequestEndBlock{Height: 2})
	c.app.Commit()

	assert.Equal(t, coin.Coins{coin.NewCoinp(20, "BTC"), coin.NewCoinp(5000, "GOV")}, balance(t, c.app, alice))

	qres := c.app.Query(abci.RequestQuery{Path: "/wallets", Data: alice, Height: 1})
	assert.NotEqual(t, uint32(0), qres.Code, "only the latest height is served")
	qres = c.app.Query(abci.RequestQuery{Path: "/unknown", Data: alice})
	assert.NotEqual(t, uint32(0), qres.Code)
}

func tag(key, value string) common.KVPair {
	return common.KVPair{Key: []byte(key), Value: []byte(value)}
}
