package escrow

import (
	"encoding/json"
	"testing"
	"time"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/custodytest"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/gconf"
	"github.com/chidioffor/crypto-hybrid-sub000/store"
	"github.com/chidioffor/crypto-hybrid-sub000/x"
	"github.com/chidioffor/crypto-hybrid-sub000/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t      *testing.T
	db     custody.CacheableKVStore
	router *custodytest.Router
	auth   *custodytest.CtxAuth
	cash   cash.Controller
	now    time.Time

	payer, payee, arbiter custody.Condition
	sink                  custody.Address
}

func newFixture(t *testing.T, feeRate custody.Fraction) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		db:      store.MemStore(),
		router:  custodytest.NewRouter(),
		auth:    &custodytest.CtxAuth{Key: "auth"},
		cash:    cash.NewController(cash.NewBucket()),
		now:     time.Unix(1500000000, 0),
		payer:   custodytest.NewCondition(),
		payee:   custodytest.NewCondition(),
		arbiter: custodytest.NewCondition(),
		sink:    custodytest.RandomAddr(t),
	}
	conf := Configuration{
		Owner:         custodytest.RandomAddr(t),
		FeeSink:       f.sink,
		FeeRate:       feeRate,
		MaxMilestones: 4,
	}
	require.NoError(t, gconf.Save(f.db, configPkg, &conf))
	RegisterRoutes(f.router, x.ChainAuth(f.auth), f.cash)
	require.NoError(t, f.cash.IssueCoins(f.ctx(), f.db, f.payer.Address(), coin.NewCoin(5000, "USD")))
	return f
}

func (f *fixture) ctx(signers ...custody.Condition) custody.Context {
	return f.auth.SetConditions(custodytest.BlockCtx(1, f.now), signers...)
}

func (f *fixture) deliver(msg custody.Msg, signers ...custody.Condition) ([]byte, error) {
	res, err := f.router.Deliver(f.ctx(signers...), f.db, msg)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (f *fixture) mustDeliver(msg custody.Msg, signers ...custody.Condition) []byte {
	f.t.Helper()
	data, err := f.deliver(msg, signers...)
	require.NoError(f.t, err)
	return data
}

// create returns a funded agreement.
func (f *fixture) create(amount int64, policy ReleasePolicy, milestones ...string) ([]byte, *Agreement) {
	f.t.Helper()
	id := f.mustDeliver(&CreateMsg{
		Payee:         f.payee.Address(),
		Arbiter:       f.arbiter.Address(),
		Amount:        coin.NewCoinp(amount, "USD"),
		Deadline:      custody.AsUnixTime(f.now.Add(time.Hour)),
		Milestones:    milestones,
		ReleasePolicy: policy,
	}, f.payer)
	return id, f.agreement(id)
}

func (f *fixture) agreement(id []byte) *Agreement {
	f.t.Helper()
	var a Agreement
	require.NoError(f.t, NewAgreementBucket().One(f.db, id, &a))
	return &a
}

func (f *fixture) balance(addr custody.Address) int64 {
	f.t.Helper()
	b, err := f.cash.Balance(f.db, addr)
	require.NoError(f.t, err)
	return b.Balance("USD")
}

func TestMilestoneScenario(t *testing.T) {
	f := newFixture(t, custody.NewFraction(1, 100))
	id, a := f.create(1000, PayerOnly, "design", "build")
	assert.Equal(t, StateCreated, a.State)
	assert.Equal(t, f.payer.Address(), a.Payer, "payer defaults to the signer")
	assert.Equal(t, custody.NewFraction(1, 100), a.FeeRate)

	f.mustDeliver(&FundMsg{AgreementID: id}, f.payer)
	assert.Equal(t, StateFunded, f.agreement(id).State)
	assert.Equal(t, int64(1000), f.balance(a.Address))
	assert.Equal(t, int64(4000), f.balance(f.payer.Address()))

	f.mustDeliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "design"}, f.payee)
	assert.Equal(t, StateInProgress, f.agreement(id).State)

	// release is not possible while in progress
	_, err := f.deliver(&ReleaseMsg{AgreementID: id}, f.payer)
	assert.True(t, errors.ErrState.Is(err), "got %v", err)

	f.mustDeliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "build"}, f.arbiter)
	assert.Equal(t, StateCompleted, f.agreement(id).State)

	f.mustDeliver(&ReleaseMsg{AgreementID: id}, f.payer)
	released := f.agreement(id)
	assert.Equal(t, StateReleased, released.State)
	assert.Equal(t, OutcomePaidPayee, released.Outcome)
	assert.Equal(t, int64(990), f.balance(f.payee.Address()))
	assert.Equal(t, int64(10), f.balance(f.sink))
	assert.Equal(t, int64(0), f.balance(a.Address))

	_, err = f.deliver(&ReleaseMsg{AgreementID: id}, f.payer)
	assert.True(t, errors.ErrAlreadyDone.Is(err), "got %v", err)

	var history []Transition
	_, err = NewTransitionBucket().ByIndex(f.db, "agreement", id, &history)
	require.NoError(t, err)
	var states []State
	for _, tr := range history {
		states = append(states, tr.To)
	}
	assert.Equal(t, []State{StateCreated, StateFunded, StateInProgress, StateCompleted, StateReleased}, states)
	assert.Equal(t, f.arbiter.Address(), history[3].Actor)

	var done []MilestoneRecord
	_, err = NewMilestoneBucket().ByIndex(f.db, "agreement", id, &done)
	require.NoError(t, err)
	require.Len(t, done, 2)
	assert.Equal(t, "design", done[0].Milestone)
	assert.Equal(t, f.payee.Address(), done[0].CompletedBy)
}

func TestReleasePolicies(t *testing.T) {
	cases := map[string]struct {
		policy   ReleasePolicy
		complete bool
		releaser func(f *fixture) custody.Condition
		wantErr  *errors.Error
	}{
		"payer releases funded": {
			policy:   PayerOnly,
			releaser: func(f *fixture) custody.Condition { return f.payer },
		},
		"payee cannot release funded": {
			policy:   PayeeOnCompletion,
			releaser: func(f *fixture) custody.Condition { return f.payee },
			wantErr:  errors.ErrUnauthorized,
		},
		"arbiter cannot release under payer only": {
			policy:   PayerOnly,
			complete: true,
			releaser: func(f *fixture) custody.Condition { return f.arbiter },
			wantErr:  errors.ErrUnauthorized,
		},
		"arbiter releases completed": {
			policy:   ArbiterOnCompletion,
			complete: true,
			releaser: func(f *fixture) custody.Condition { return f.arbiter },
		},
		"payee cannot release under arbiter policy": {
			policy:   ArbiterOnCompletion,
			complete: true,
			releaser: func(f *fixture) custody.Condition { return f.payee },
			wantErr:  errors.ErrUnauthorized,
		},
		"payee releases completed": {
			policy:   PayeeOnCompletion,
			complete: true,
			releaser: func(f *fixture) custody.Condition { return f.payee },
		},
		"stranger": {
			policy:   PayerOnly,
			releaser: func(f *fixture) custody.Condition { return custodytest.NewCondition() },
			wantErr:  errors.ErrUnauthorized,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, custody.NewFraction(0, 1))
			id, _ := f.create(100, tc.policy, "all")
			f.mustDeliver(&FundMsg{AgreementID: id}, f.payer)
			if tc.complete {
				f.mustDeliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "all"}, f.payee)
			}
			_, err := f.deliver(&ReleaseMsg{AgreementID: id}, tc.releaser(f))
			require.True(t, tc.wantErr.Is(err), "got %v", err)
			if tc.wantErr == nil {
				assert.Equal(t, int64(100), f.balance(f.payee.Address()))
			}
		})
	}
}

func TestPayoutConservesValue(t *testing.T) {
	rates := []custody.Fraction{
		custody.NewFraction(0, 1),
		custody.NewFraction(1, 100),
		custody.NewFraction(1, 3),
		custody.NewFraction(99, 100),
		custody.NewFraction(1, 1),
	}
	for _, rate := range rates {
		for _, amount := range []int64{1, 7, 999, 1000} {
			f := newFixture(t, rate)
			id, a := f.create(amount, PayerOnly, "m")
			f.mustDeliver(&FundMsg{AgreementID: id}, f.payer)
			f.mustDeliver(&ReleaseMsg{AgreementID: id}, f.payer)
			payee, fee := f.balance(f.payee.Address()), f.balance(f.sink)
			assert.Equal(t, amount, payee+fee, "rate %s amount %d", rate, amount)
			assert.Equal(t, int64(0), f.balance(a.Address))
		}
	}
}

func TestDisputeResolution(t *testing.T) {
	cases := map[string]struct {
		winnerIsPayer bool
		wantPayer     int64
		wantPayee     int64
		wantFee       int64
		wantOutcome   Outcome
	}{
		"payer wins without fee": {winnerIsPayer: true, wantPayer: 5000, wantPayee: 0, wantFee: 0, wantOutcome: OutcomeRefundedPayer},
		"payee wins minus fee":   {winnerIsPayer: false, wantPayer: 4000, wantPayee: 980, wantFee: 20, wantOutcome: OutcomePaidPayee},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, custody.NewFraction(2, 100))
			id, _ := f.create(1000, PayerOnly, "a", "b")
			f.mustDeliver(&FundMsg{AgreementID: id}, f.payer)
			f.mustDeliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "a"}, f.payee)

			_, err := f.deliver(&ResolveMsg{AgreementID: id}, f.arbiter)
			require.True(t, ErrNotDisputed.Is(err), "got %v", err)
			_, err = f.deliver(&DisputeMsg{AgreementID: id}, f.arbiter)
			require.True(t, errors.ErrUnauthorized.Is(err), "got %v", err)

			f.mustDeliver(&DisputeMsg{AgreementID: id}, f.payee)
			assert.Equal(t, StateDisputed, f.agreement(id).State)

			// milestones are frozen while disputed
			_, err = f.deliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "b"}, f.payee)
			assert.True(t, errors.ErrState.Is(err), "got %v", err)
			_, err = f.deliver(&ReleaseMsg{AgreementID: id}, f.payer)
			assert.True(t, errors.ErrState.Is(err), "got %v", err)
			_, err = f.deliver(&ResolveMsg{AgreementID: id, WinnerIsPayer: tc.winnerIsPayer}, f.payer)
			assert.True(t, errors.ErrUnauthorized.Is(err), "got %v", err)

			f.mustDeliver(&ResolveMsg{AgreementID: id, WinnerIsPayer: tc.winnerIsPayer}, f.arbiter)
			a := f.agreement(id)
			assert.Equal(t, StateResolved, a.State)
			assert.Equal(t, tc.wantOutcome, a.Outcome)
			assert.Equal(t, tc.wantPayer, f.balance(f.payer.Address()))
			assert.Equal(t, tc.wantPayee, f.balance(f.payee.Address()))
			assert.Equal(t, tc.wantFee, f.balance(f.sink))
			assert.Equal(t, int64(0), f.balance(a.Address))

			_, err = f.deliver(&ResolveMsg{AgreementID: id, WinnerIsPayer: !tc.winnerIsPayer}, f.arbiter)
			assert.True(t, ErrNotDisputed.Is(err), "got %v", err)
		})
	}
}

func TestDeadline(t *testing.T) {
	f := newFixture(t, custody.NewFraction(0, 1))
	id, a := f.create(100, PayerOnly, "a", "b")
	f.mustDeliver(&FundMsg{AgreementID: id}, f.payer)
	f.mustDeliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "a"}, f.payee)

	f.now = a.Deadline.Time()
	_, err := f.deliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "b"}, f.payee)
	require.True(t, ErrDeadlinePassed.Is(err), "got %v", err)
	assert.True(t, errors.ErrExpired.Is(err))

	// funds stay in place until a dispute is resolved
	assert.Equal(t, int64(100), f.balance(a.Address))
	f.mustDeliver(&DisputeMsg{AgreementID: id}, f.payer)
	f.mustDeliver(&ResolveMsg{AgreementID: id, WinnerIsPayer: true}, f.arbiter)
	assert.Equal(t, int64(5000), f.balance(f.payer.Address()))
}

func TestCompleteMilestone(t *testing.T) {
	f := newFixture(t, custody.NewFraction(0, 1))
	id, _ := f.create(100, PayerOnly, "a", "b")

	_, err := f.deliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "a"}, f.payee)
	assert.True(t, errors.ErrState.Is(err), "not funded: %v", err)

	f.mustDeliver(&FundMsg{AgreementID: id}, f.payer)
	_, err = f.deliver(&FundMsg{AgreementID: id}, f.payer)
	assert.True(t, errors.ErrState.Is(err), "funded twice: %v", err)

	_, err = f.deliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "a"}, f.payer)
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %v", err)
	_, err = f.deliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "c"}, f.payee)
	assert.True(t, errors.ErrInput.Is(err), "got %v", err)

	f.mustDeliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "a"}, f.payee)
	_, err = f.deliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "a"}, f.arbiter)
	assert.True(t, ErrMilestoneCompleted.Is(err), "got %v", err)
	assert.True(t, errors.ErrAlreadyDone.Is(err))
	assert.Equal(t, []string{"a"}, f.agreement(id).Completed)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, custody.NewFraction(0, 1))
	id, _ := f.create(100, PayerOnly, "a")

	_, err := f.deliver(&CancelMsg{AgreementID: id}, f.payee)
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %v", err)
	f.mustDeliver(&CancelMsg{AgreementID: id}, f.payer)
	assert.Equal(t, StateCancelled, f.agreement(id).State)
	assert.Equal(t, int64(5000), f.balance(f.payer.Address()))

	_, err = f.deliver(&FundMsg{AgreementID: id}, f.payer)
	assert.True(t, errors.ErrState.Is(err), "got %v", err)

	funded, _ := f.create(100, PayerOnly, "a")
	f.mustDeliver(&FundMsg{AgreementID: funded}, f.payer)
	_, err = f.deliver(&CancelMsg{AgreementID: funded}, f.payer)
	assert.True(t, errors.ErrState.Is(err), "got %v", err)
}

func TestFundWithoutBalanceRollsBack(t *testing.T) {
	f := newFixture(t, custody.NewFraction(0, 1))
	id, _ := f.create(6000, PayerOnly, "a")
	_, err := f.deliver(&FundMsg{AgreementID: id}, f.payer)
	require.True(t, errors.ErrInsufficientAmount.Is(err), "got %v", err)
	assert.Equal(t, StateCreated, f.agreement(id).State)
}

func TestCreate(t *testing.T) {
	f := newFixture(t, custody.NewFraction(0, 1))
	future := custody.AsUnixTime(f.now.Add(time.Minute))
	valid := func() *CreateMsg {
		return &CreateMsg{
			Payee:         f.payee.Address(),
			Arbiter:       f.arbiter.Address(),
			Amount:        coin.NewCoinp(10, "USD"),
			Deadline:      future,
			Milestones:    []string{"a"},
			ReleasePolicy: PayerOnly,
		}
	}

	cases := map[string]struct {
		mutate  func(*CreateMsg)
		signer  custody.Condition
		wantErr *errors.Error
	}{
		"valid": {
			mutate: func(*CreateMsg) {},
		},
		"explicit payer must sign": {
			mutate:  func(m *CreateMsg) { m.Payer = custodytest.RandomAddr(t) },
			wantErr: errors.ErrUnauthorized,
		},
		"payee is the payer": {
			mutate:  func(m *CreateMsg) { m.Payee = f.payer.Address() },
			wantErr: errors.ErrInput,
		},
		"arbiter is the payee": {
			mutate:  func(m *CreateMsg) { m.Arbiter = m.Payee },
			wantErr: errors.ErrInput,
		},
		"deadline now": {
			mutate:  func(m *CreateMsg) { m.Deadline = custody.AsUnixTime(f.now) },
			wantErr: errors.ErrInput,
		},
		"no milestones": {
			mutate:  func(m *CreateMsg) { m.Milestones = nil },
			wantErr: errors.ErrEmpty,
		},
		"duplicated milestones": {
			mutate:  func(m *CreateMsg) { m.Milestones = []string{"a", "a"} },
			wantErr: errors.ErrDuplicate,
		},
		"too many milestones": {
			mutate:  func(m *CreateMsg) { m.Milestones = []string{"a", "b", "c", "d", "e"} },
			wantErr: errors.ErrInput,
		},
		"zero amount": {
			mutate:  func(m *CreateMsg) { m.Amount = coin.NewCoinp(0, "USD") },
			wantErr: errors.ErrAmount,
		},
		"unknown policy": {
			mutate:  func(m *CreateMsg) { m.ReleasePolicy = 9 },
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			msg := valid()
			tc.mutate(msg)
			_, err := f.router.Check(f.ctx(f.payer), f.db, msg)
			require.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}
}

func TestGenesis(t *testing.T) {
	owner, sink := custodytest.RandomAddr(t), custodytest.RandomAddr(t)
	genesis := `{"conf": {"escrow": {
		"owner":          "` + owner.String() + `",
		"fee_sink":       "` + sink.String() + `",
		"fee_rate":       "1%",
		"max_milestones": 10
	}}}`
	var opts custody.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))
	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, custody.GenesisParams{}, db))

	conf, err := loadConf(db)
	require.NoError(t, err)
	assert.Equal(t, custody.NewFraction(1, 100), conf.FeeRate)
	assert.Equal(t, sink, conf.FeeSink)

	bad := `{"conf": {"escrow": {"owner": "` + owner.String() + `", "fee_sink": "` + sink.String() + `", "fee_rate": "120%", "max_milestones": 10}}}`
	require.NoError(t, json.Unmarshal([]byte(bad), &opts))
	assert.Error(t, Initializer{}.FromGenesis(opts, custody.GenesisParams{}, store.MemStore()))
}

func TestQueries(t *testing.T) {
	f := newFixture(t, custody.NewFraction(0, 1))
	qr := custody.NewQueryRouter()
	RegisterQuery(qr)
	id, _ := f.create(100, PayerOnly, "a")
	f.mustDeliver(&FundMsg{AgreementID: id}, f.payer)
	f.mustDeliver(&CompleteMilestoneMsg{AgreementID: id, Milestone: "a"}, f.payee)

	for path, want := range map[string]struct {
		key []byte
		n   int
	}{
		"/agreements":            {id, 1},
		"/agreements/payer":      {f.payer.Address(), 1},
		"/agreements/payee":      {f.payee.Address(), 1},
		"/agreements/arbiter":    {f.arbiter.Address(), 1},
		"/milestones/agreement":  {id, 1},
		"/transitions/agreement": {id, 3},
	} {
		h := qr.Handler(path)
		require.NotNil(t, h, path)
		res, err := h.Query(f.db, custody.KeyQueryMod, want.key)
		require.NoError(t, err, path)
		assert.Len(t, res, want.n, path)
	}
}
