package gov

import (
	"bytes"
	"testing"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/custodytest"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	open := func(tally Tally) *Proposal {
		return &Proposal{
			Rules:       Rules{Quorum: custody.NewFraction(1, 10), GracePeriod: 100},
			VotingStart: 100,
			VotingEnd:   200,
			Tally:       tally,
			Status:      StatusOpen,
		}
	}
	queued := open(Tally{For: 100})
	queued.Status = StatusQueued
	queued.QueuedEta = 300
	executed := open(Tally{})
	executed.Status = StatusExecuted
	cancelled := open(Tally{For: 100})
	cancelled.Status = StatusCancelled

	cases := map[string]struct {
		p    *Proposal
		now  custody.UnixTime
		want ProposalState
	}{
		"before start":              {p: open(Tally{}), now: 50, want: StatePending},
		"at start":                  {p: open(Tally{}), now: 100, want: StatePending},
		"after start":               {p: open(Tally{}), now: 101, want: StateActive},
		"before end":                {p: open(Tally{For: 1000}), now: 199, want: StateActive},
		"no votes":                  {p: open(Tally{}), now: 200, want: StateDefeated},
		"quorum and majority":       {p: open(Tally{For: 60, Against: 40}), now: 200, want: StateSucceeded},
		"tie":                       {p: open(Tally{For: 50, Against: 50}), now: 200, want: StateDefeated},
		"below quorum":              {p: open(Tally{For: 99}), now: 500, want: StateDefeated},
		"abstain counts for quorum": {p: open(Tally{For: 10, Abstain: 90}), now: 200, want: StateSucceeded},
		"queued within grace":       {p: queued, now: 399, want: StateQueued},
		"queued before eta":         {p: queued, now: 250, want: StateQueued},
		"grace elapsed":             {p: queued, now: 400, want: StateExpired},
		"executed":                  {p: executed, now: 1000, want: StateExecuted},
		"cancelled":                 {p: cancelled, now: 150, want: StateCancelled},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.p, tc.now, 1000))
		})
	}
}

func TestTally(t *testing.T) {
	var tally Tally
	require.NoError(t, tally.Add(VoteFor, 10))
	require.NoError(t, tally.Add(VoteAgainst, 5))
	require.NoError(t, tally.Add(VoteAbstain, 1))
	assert.Equal(t, Tally{For: 10, Against: 5, Abstain: 1}, tally)
	assert.Equal(t, int64(16), tally.Total())

	assert.True(t, errors.ErrInput.Is(tally.Add(VoteFor, 0)))
	assert.True(t, errors.ErrInput.Is(tally.Add(VoteChoice(7), 1)))
	assert.True(t, errors.ErrOverflow.Is(tally.Add(VoteFor, coin.MaxInt)))
	assert.Equal(t, int64(16), tally.Total(), "failed adds change nothing")
}

func TestActionHash(t *testing.T) {
	pid := []byte("proposal")
	target := custodytest.RandomAddr(t)
	a := ProposalAction{Target: target, Value: coin.NewCoinp(5, "GOV"), Path: "cash/send", Payload: []byte("xy")}

	h := ActionHash(pid, 0, a)
	assert.Len(t, h, 32)
	assert.Equal(t, h, ActionHash(pid, 0, a))

	others := map[string][]byte{
		"index":    ActionHash(pid, 1, a),
		"proposal": ActionHash([]byte("proposam"), 0, a),
		"value":    ActionHash(pid, 0, ProposalAction{Target: target, Value: coin.NewCoinp(6, "GOV"), Path: a.Path, Payload: a.Payload}),
		"shifted":  ActionHash(pid, 0, ProposalAction{Target: target, Value: a.Value, Path: "cash/sendx", Payload: []byte("y")}),
		"no value": ActionHash(pid, 0, ProposalAction{Path: a.Path, Payload: a.Payload}),
	}
	for name, o := range others {
		assert.False(t, bytes.Equal(h, o), name)
	}
}

func TestRulesValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*Rules)
		wantErr *errors.Error
	}{
		"valid":              {mutate: func(*Rules) {}},
		"zero quorum":        {mutate: func(r *Rules) { r.Quorum = custody.NewFraction(0, 1) }},
		"negative threshold": {mutate: func(r *Rules) { r.ProposalThreshold = -1 }, wantErr: errors.ErrInput},
		"quorum above one":   {mutate: func(r *Rules) { r.Quorum = custody.NewFraction(3, 2) }, wantErr: errors.ErrInput},
		"single second vote": {mutate: func(r *Rules) { r.VotingPeriod = 1 }, wantErr: errors.ErrInput},
		"negative delay":     {mutate: func(r *Rules) { r.VotingDelay = -1 }, wantErr: errors.ErrInput},
		"no grace":           {mutate: func(r *Rules) { r.GracePeriod = 0 }, wantErr: errors.ErrInput},
		"negative timelock":  {mutate: func(r *Rules) { r.TimelockDelay = -5 }, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			r := testRules()
			tc.mutate(&r)
			err := r.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}
}

func TestProposalActionValidate(t *testing.T) {
	target := custodytest.RandomAddr(t)
	cases := map[string]struct {
		a       ProposalAction
		wantErr *errors.Error
	}{
		"transfer":             {a: ProposalAction{Target: target, Value: coin.NewCoinp(1, "GOV")}},
		"invoke":               {a: ProposalAction{Path: "gov/update_rules"}},
		"both":                 {a: ProposalAction{Target: target, Value: coin.NewCoinp(1, "GOV"), Path: "cash/send"}},
		"nothing":              {a: ProposalAction{}, wantErr: errors.ErrEmpty},
		"target without value": {a: ProposalAction{Target: target, Path: "cash/send"}, wantErr: errors.ErrInput},
		"zero value":           {a: ProposalAction{Target: target, Value: coin.NewCoinp(0, "GOV")}, wantErr: errors.ErrAmount},
		"value without target": {a: ProposalAction{Value: coin.NewCoinp(1, "GOV")}, wantErr: errors.ErrEmpty},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.a.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}
}
