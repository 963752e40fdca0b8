/*
Package escrow implements a milestone escrow.

> An escrow is a financial arrangement where a third party holds and regulates
> payment of the funds required for two parties involved in a given transaction.

A payer creates an agreement naming a payee, an arbiter, an amount, a
deadline and a list of milestones. Once funded, the agreement account
holds exactly the agreed amount until it is paid out, once, either by a
release or by the arbiter resolving a dispute. The payee or the arbiter
mark milestones completed until all of them are done.

A passing deadline never moves funds. It only blocks further milestone
completion, the disposition of an expired agreement is left to a dispute.
*/
package escrow

import "github.com/chidioffor/crypto-hybrid-sub000/errors"

var (
	// ErrNotDisputed is returned when resolving an agreement that is not
	// in dispute, including one that was already resolved.
	ErrNotDisputed = errors.RegisterSub(errors.ErrState, 1201, "not disputed")
	// ErrMilestoneCompleted is returned when a milestone is completed twice.
	ErrMilestoneCompleted = errors.RegisterSub(errors.ErrAlreadyDone, 1202, "milestone completed")
	// ErrDeadlinePassed is returned when completing a milestone at or
	// after the deadline.
	ErrDeadlinePassed = errors.RegisterSub(errors.ErrExpired, 1203, "deadline passed")
)
