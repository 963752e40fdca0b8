package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/crypto"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// signPrefix versions the layout built by BuildSignBytes.
var signPrefix = []byte{'c', 's', 't', 1}

// VerifyTxSignatures verifies every signature of tx and advances the
// sequence of each signer. It returns the signer conditions in signature
// order. A transaction without signatures yields an empty list.
func VerifyTxSignatures(db custody.KVStore, tx SignedTx, chainID string) ([]custody.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	conds := make([]custody.Condition, 0, len(sigs))
	for i, sig := range sigs {
		cond, err := VerifySignature(db, sig, payload, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

// VerifySignature checks sig over payload for the given chain. A valid
// signature must carry the next sequence of its key, which is then
// incremented, so the same signed bytes never verify twice.
func VerifySignature(db custody.KVStore, sig *StdSignature, payload []byte, chainID string) (custody.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}

	b := NewBucket()
	user, err := b.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	if !user.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := b.Save(db, user); err != nil {
		return nil, err
	}
	return user.Pubkey.Condition(), nil
}

// BuildSignBytes returns the sha512 digest that is actually signed:
//
//	prefix (4) | len(chainID) (1) | chainID | sequence (8, big endian) | payload
//
// Binding the chain id and the sequence into the digest makes a signature
// useless on another chain or for another transaction of the same key.
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !custody.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %q", chainID)
	}

	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], uint64(seq))

	h := sha512.New()
	h.Write(signPrefix)
	h.Write([]byte{byte(len(chainID))})
	h.Write([]byte(chainID))
	h.Write(seqBytes[:])
	h.Write(payload)
	return h.Sum(nil), nil
}

// SignTx signs tx with the given sequence. Use NextNonce to find the
// sequence the chain expects.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, seq)
	if err != nil {
		return nil, err
	}
	raw, err := signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &StdSignature{Pubkey: signer.PublicKey(), Signature: raw, Sequence: seq}, nil
}

// NextNonce returns the sequence the next signature of pubkey must carry.
func NextNonce(db custody.ReadOnlyKVStore, pubkey crypto.PublicKey) (int64, error) {
	user, err := NewBucket().GetOrCreate(db, pubkey)
	if err != nil {
		return 0, err
	}
	return user.Sequence, nil
}
