package custodytest

import (
	"testing"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/crypto"
)

func NewKey() crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

func NewCondition() custody.Condition {
	return NewKey().PublicKey().Condition()
}

// RandomAddr returns the address of a fresh key.
func RandomAddr(t testing.TB) custody.Address {
	t.Helper()
	return NewCondition().Address()
}

// ParseAddress takes an address in a human readable format and returns
// its binary representation.
func ParseAddress(t testing.TB, encodedAddress string) custody.Address {
	t.Helper()

	addr, err := custody.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
