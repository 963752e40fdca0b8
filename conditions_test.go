package custody

import (
	"encoding/json"
	"testing"

	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionParse(t *testing.T) {
	cases := map[string]struct {
		cond    Condition
		wantExt string
		wantTyp string
		wantErr *errors.Error
	}{
		"vault": {
			cond:    NewCondition("vault", "vault", []byte{0, 0, 0, 1}),
			wantExt: "vault",
			wantTyp: "vault",
		},
		"newline in data": {
			cond:    NewCondition("sigs", "ed25519", []byte("\n\n")),
			wantExt: "sigs",
			wantTyp: "ed25519",
		},
		"too short extension": {
			cond:    NewCondition("ab", "vault", []byte{1}),
			wantErr: errors.ErrInput,
		},
		"missing data": {
			cond:    Condition("gov/treasury/"),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ext, typ, _, err := tc.cond.Parse()
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %v", err)
				require.Error(t, tc.cond.Validate())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExt, ext)
			assert.Equal(t, tc.wantTyp, typ)
			assert.NoError(t, tc.cond.Validate())
		})
	}
}

func TestAddressDerivation(t *testing.T) {
	a := NewCondition("vault", "vault", []byte{1}).Address()
	b := NewCondition("vault", "vault", []byte{2}).Address()
	require.Len(t, a, AddressLength)
	assert.False(t, a.Equals(b))
	assert.True(t, a.Equals(NewCondition("vault", "vault", []byte{1}).Address()))
	assert.NoError(t, a.Validate())
	assert.True(t, errors.ErrEmpty.Is(Address(nil).Validate()))
	assert.True(t, errors.ErrInput.Is(Address([]byte{1, 2}).Validate()))
}

func TestAddressEncoding(t *testing.T) {
	addr := NewCondition("escrow", "agreement", []byte{7}).Address()

	s := addr.String()
	require.Contains(t, s, AddressPrefix+"1")

	parsed, err := ParseAddress(s)
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	hexed, err := ParseAddress("0102030405060708090A0B0C0D0E0F1011121314")
	require.NoError(t, err)
	assert.Len(t, hexed, AddressLength)

	_, err = ParseAddress("custody1invalid")
	assert.True(t, errors.ErrInput.Is(err))

	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	var back Address
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, addr, back)

	var empty Address
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.Nil(t, empty)
}
