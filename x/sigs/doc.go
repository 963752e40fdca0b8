/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.

Every signature covers the chain id and the sequence number of the signer,
so a transaction can neither be replayed on another chain nor twice on the
same chain.
*/
package sigs

import "github.com/chidioffor/crypto-hybrid-sub000/errors"

// ErrInvalidSequence is returned when a signature carries a sequence other
// than the one expected for its signer.
var ErrInvalidSequence = errors.RegisterSub(errors.ErrInput, 1010, "invalid sequence")
