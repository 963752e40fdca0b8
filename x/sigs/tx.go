package sigs

import (
	"github.com/chidioffor/crypto-hybrid-sub000/crypto"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the Msg.
	// Equivalent to custody.MustMarshal(tx.GetMsg()) if Msg has a
	// deterministic serialization.
	//
	// Helpful to store original, unparsed bytes here, just in case.
	GetSignBytes() ([]byte, error)

	// Signatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature of one signer.
type StdSignature struct {
	Pubkey    crypto.PublicKey `json:"pubkey"`
	Signature []byte           `json:"signature"`
	Sequence  int64            `json:"sequence"`
}

// Validate ensures the signature is well formed.
func (s *StdSignature) Validate() error {
	if s == nil {
		return errors.Wrap(errors.ErrEmpty, "signature")
	}
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if _, err := crypto.ParsePublicKey(s.Pubkey); err != nil {
		return errors.Wrap(err, "pubkey")
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrEmpty, "signature")
	}
	return nil
}
