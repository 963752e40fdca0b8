package escrow

import (
	"testing"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/custodytest"
	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	for from := range stateNames {
		for to := range stateNames {
			if !canTransition(from, to) {
				continue
			}
			assert.False(t, from.IsTerminal(), "%s is terminal but moves to %s", from, to)
			if from != StateDisputed {
				assert.NotEqual(t, StateResolved, to, "only a dispute is resolved")
			}
		}
	}
	assert.True(t, canTransition(stateNone, StateCreated))
	assert.False(t, canTransition(StateCompleted, StateInProgress))
	assert.False(t, canTransition(StateDisputed, StateReleased))
	assert.False(t, canTransition(StateFunded, StateCancelled))
}

func TestCanRelease(t *testing.T) {
	payer, payee, arbiter := custodytest.RandomAddr(t), custodytest.RandomAddr(t), custodytest.RandomAddr(t)
	a := Agreement{Payer: payer, Payee: payee, Arbiter: arbiter}

	cases := map[string]struct {
		state  State
		policy ReleasePolicy
		who    custody.Address
		want   bool
	}{
		"payer funded":         {StateFunded, PayerOnly, payer, true},
		"arbiter funded":       {StateFunded, PayeeOnCompletion, arbiter, false},
		"payer in progress":    {StateInProgress, PayerOnly, payer, false},
		"payer completed":      {StateCompleted, PayerOnly, payer, true},
		"arbiter completed":    {StateCompleted, ArbiterOnCompletion, arbiter, true},
		"payee arbiter policy": {StateCompleted, ArbiterOnCompletion, payee, false},
		"payee completed":      {StateCompleted, PayeeOnCompletion, payee, true},
		"arbiter payee policy": {StateCompleted, PayeeOnCompletion, arbiter, true},
		"payer disputed":       {StateDisputed, PayerOnly, payer, false},
		"payer released":       {StateReleased, PayerOnly, payer, false},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			a.State = tc.state
			a.ReleasePolicy = tc.policy
			assert.Equal(t, tc.want, a.CanRelease(tc.who))
		})
	}
}
