package custodytest

import custody "github.com/chidioffor/crypto-hybrid-sub000"

// Tx represents a custody transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg custody.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ custody.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (custody.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg is a message with a configurable path, used to test routing.
type Msg struct {
	RoutePath string
	Serial    []byte
	Err       error
}

var _ custody.Msg = (*Msg)(nil)

func (m *Msg) Path() string { return m.RoutePath }

func (m *Msg) Validate() error { return m.Err }

func (m *Msg) Marshal() ([]byte, error) { return m.Serial, nil }

func (m *Msg) Unmarshal(b []byte) error {
	m.Serial = b
	return nil
}
