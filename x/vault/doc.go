/*
Package vault implements an N of M execution vault.

A vault holds value in its own account and acts only when enough of its
signers approved an action. Signers submit actions, approve or revoke
their approval, and any signer executes an action once the approvals
counted over the current signer set reach the threshold. Changes to the
signer set and the threshold are themselves actions and require the same
approval.

Every action executes at most once. The action is marked executed and
saved before its effect runs, so an effect that reenters the vault finds
the action already executed and the whole transaction fails.
*/
package vault

import "github.com/chidioffor/crypto-hybrid-sub000/errors"

var (
	// ErrAlreadyApproved is returned when a signer approves an action twice.
	ErrAlreadyApproved = errors.RegisterSub(errors.ErrAlreadyDone, 1101, "already approved")
	// ErrAlreadyExecuted is returned when an executed action is executed again.
	ErrAlreadyExecuted = errors.RegisterSub(errors.ErrAlreadyDone, 1102, "already executed")
	// ErrInsufficientApprovals is returned when the counted approvals are
	// below the vault threshold.
	ErrInsufficientApprovals = errors.RegisterSub(errors.ErrThreshold, 1103, "insufficient approvals")
	// ErrNotApproved is returned when a signer revokes an approval it never gave.
	ErrNotApproved = errors.RegisterSub(errors.ErrState, 1104, "not approved")
	// ErrNotSigner is returned when the caller is not a current vault signer.
	ErrNotSigner = errors.RegisterSub(errors.ErrUnauthorized, 1105, "not a signer")
)
