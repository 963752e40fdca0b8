/*
Package gov implements token weighted governance with a timelock.

A governor owns a treasury account and a set of rules. Token holders with
enough weight propose a list of actions, holders vote with the balance
they had when voting started, and a proposal that reached quorum with
more votes for than against is queued behind a timelock. Once the
timelock passed, anyone executes the queued actions, in order, as the
governor. A queued proposal not executed within the grace period expires
and can never run.

The state of a proposal is derived from the stored status, the tally and
the current time by Resolve. Nothing changes state in the background.
*/
package gov

import "github.com/chidioffor/crypto-hybrid-sub000/errors"

var (
	// ErrAlreadyVoted is returned when a voter votes twice on a proposal.
	ErrAlreadyVoted = errors.RegisterSub(errors.ErrAlreadyDone, 1301, "already voted")
	// ErrActionExecuted is returned when a timelock entry was already used.
	ErrActionExecuted = errors.RegisterSub(errors.ErrAlreadyDone, 1302, "action already executed")
	// ErrBelowProposalThreshold is returned when the proposer weight does
	// not exceed the proposal threshold.
	ErrBelowProposalThreshold = errors.RegisterSub(errors.ErrUnauthorized, 1303, "below proposal threshold")
	// ErrGraceElapsed is returned when a queued proposal is executed after
	// its grace period.
	ErrGraceElapsed = errors.RegisterSub(errors.ErrExpired, 1304, "grace period elapsed")
	// ErrTimelock is returned when a queued proposal is executed before its
	// eta.
	ErrTimelock = errors.RegisterSub(errors.ErrState, 1305, "timelock not passed")
	// ErrQuorum is returned when queuing a proposal that did not reach
	// quorum.
	ErrQuorum = errors.RegisterSub(errors.ErrThreshold, 1306, "quorum not reached")
)
