package app

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/crypto"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/x/sigs"
)

const maxMemoSize = 128

// Tx is the transaction envelope of the application. It carries a single
// message, identified by its path and encoded as payload, together with
// the signatures of the parties authorizing it.
type Tx struct {
	Path       string               `json:"path"`
	Payload    []byte               `json:"payload"`
	Memo       string               `json:"memo,omitempty"`
	Signatures []*sigs.StdSignature `json:"signatures,omitempty"`
}

var _ sigs.SignedTx = (*Tx)(nil)

// NewTx wraps the message in an unsigned transaction.
func NewTx(msg custody.Msg, memo string) (*Tx, error) {
	payload, err := msg.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal msg")
	}
	return &Tx{Path: msg.Path(), Payload: payload, Memo: memo}, nil
}

func (tx *Tx) Marshal() ([]byte, error) { return custody.MarshalBinary(tx) }

func (tx *Tx) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, tx) }

// GetSignBytes returns the transaction serialized without signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := *tx
	unsigned.Signatures = nil
	return unsigned.Marshal()
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// Sign appends the signature of the signer using the given sequence.
func (tx *Tx) Sign(signer crypto.Signer, chainID string, seq int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// Validate checks the envelope, not the message it carries.
func (tx *Tx) Validate() error {
	var errs error
	if tx.Path == "" {
		errs = errors.AppendField(errs, "Path", errors.ErrEmpty)
	}
	if len(tx.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrapf(errors.ErrInput, "longer than %d", maxMemoSize))
	}
	for i, s := range tx.Signatures {
		if err := s.Validate(); err != nil {
			errs = errors.Append(errs, errors.Wrapf(err, "signature %d", i))
		}
	}
	return errs
}

// decodedTx is a transaction with its message already decoded.
type decodedTx struct {
	*Tx
	msg custody.Msg
}

var _ custody.Tx = (*decodedTx)(nil)

func (tx *decodedTx) GetMsg() (custody.Msg, error) {
	return tx.msg, nil
}

// NewTxDecoder returns a decoder that parses transactions carrying any of
// the messages registered in the router.
func NewTxDecoder(r *Router) custody.TxDecoder {
	return func(raw []byte) (custody.Tx, error) {
		var tx Tx
		if err := tx.Unmarshal(raw); err != nil {
			return nil, errors.Wrapf(errors.ErrMsg, "decode tx: %s", err)
		}
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		msg, err := r.decode(tx.Path, tx.Payload)
		if err != nil {
			return nil, err
		}
		return &decodedTx{Tx: &tx, msg: msg}, nil
	}
}
