package custody

import (
	"reflect"

	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// Marshaller serializes a model or message. Marshal may validate first.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent can be stored and read back. Unmarshal usually needs a
// pointer receiver, which is why it is split from Marshaller.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Msg is the request for one state transition. It carries no
// authentication; the signatures live in the Tx around it.
type Msg interface {
	Persistent

	// Path routes the message to its handler, for example
	// "vault/approve". Invoke payloads are decoded by path as well.
	Path() string

	// Validate checks the message on its own, without reading state.
	Validate() error
}

// Tx is what a client submits: a message plus whatever authenticates it.
type Tx interface {
	GetMsg() (Msg, error)
}

type TxDecoder func(txBytes []byte) (Tx, error)

// GetPath is meant for logging and never fails.
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg copies the message of tx into destination, which must point to
// the expected message type, and validates it.
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrMsg, "no message")
	}

	dst := reflect.ValueOf(destination)
	if dst.Kind() != reflect.Ptr || dst.IsNil() {
		return errors.Wrap(errors.ErrHuman, "destination must be a non nil pointer")
	}

	src := reflect.ValueOf(msg)
	if src.Kind() == reflect.Ptr {
		if src.IsNil() {
			return errors.Wrap(errors.ErrMsg, "nil message")
		}
		src = src.Elem()
	}
	if src.Type() != dst.Elem().Type() {
		return errors.Wrapf(errors.ErrType, "want %s message, got %T", dst.Elem().Type(), msg)
	}
	dst.Elem().Set(src)

	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}
