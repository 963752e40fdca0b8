package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// The error taxonomy of the custody core. Every error returned by a handler
// wraps one of these kinds (or a kind registered with RegisterSub on top of
// one of them) so that callers can always classify a failed call.
var (
	// ErrUnauthorized is returned when the caller lacks the required role
	// or weight.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrState is returned when an operation is attempted from a state
	// that disallows it.
	ErrState = Register(4, "invalid state")

	// ErrAlreadyDone is returned for double approvals, double votes and
	// double executions. Re-submission is always safe against it.
	ErrAlreadyDone = Register(5, "already done")

	// ErrThreshold is returned when approvals or quorum are insufficient.
	ErrThreshold = Register(6, "threshold not met")

	// ErrExpired is returned when a deadline or a grace window elapsed.
	ErrExpired = Register(7, "expired")

	// ErrInput is returned for malformed targets, milestones or amounts.
	ErrInput = Register(8, "invalid input")

	// ErrMsg is returned when a message cannot be decoded or is of an
	// unexpected kind.
	ErrMsg = Register(9, "invalid message")

	// ErrModel is returned when a persisted entity fails validation.
	ErrModel = Register(10, "invalid model")

	// ErrEmpty is returned when a value fails a not empty assertion.
	ErrEmpty = Register(11, "value is empty")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(12, "invalid type")

	// ErrAmount is returned for non positive or otherwise unusable amounts.
	ErrAmount = Register(13, "invalid amount")

	// ErrCurrency is returned when coins of different tickers are mixed.
	ErrCurrency = Register(14, "invalid currency")

	// ErrInsufficientAmount is returned when a balance cannot cover a
	// transfer.
	ErrInsufficientAmount = Register(15, "insufficient amount")

	// ErrOverflow is returned when a computation exceeds its type.
	ErrOverflow = Register(16, "overflow")

	// ErrDatabase is returned on storage failures.
	ErrDatabase = Register(17, "database")

	// ErrDuplicate is returned when a unique key or index is reused.
	ErrDuplicate = Register(18, "duplicate")

	// ErrHuman is returned when a code path is reached that should never
	// be reached if the code was written as expected.
	ErrHuman = Register(19, "coding error")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register declares a top level error kind. Codes are unique across the
// process and a reused code panics, so kinds are declared in package level
// variables only.
func Register(code uint32, description string) *Error {
	return register(code, description, nil)
}

// RegisterSub declares a kind that is a special case of parent. It has its
// own code and is also matched by parent.Is:
//
//	ErrAlreadyApproved := errors.RegisterSub(errors.ErrAlreadyDone, 1101, "already approved")
//	errors.ErrAlreadyDone.Is(ErrAlreadyApproved.New("...")) // true
func RegisterSub(parent *Error, code uint32, description string) *Error {
	if parent == nil {
		panic("errors: nil parent kind")
	}
	return register(code, description, parent)
}

func register(code uint32, description string, parent *Error) *Error {
	if prev, ok := kinds[code]; ok {
		panic(fmt.Sprintf("errors: code %d already registered for %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description, parent: parent}
	kinds[code] = e
	return e
}

// kinds indexes every registered kind by code. Code 1 is kept for errors
// of unknown origin.
var kinds = map[uint32]*Error{
	internalABCICode: {code: internalABCICode, desc: "internal"},
}

// Error is an error kind. Errors returned at runtime wrap a kind, which
// decides the ABCI code the client sees.
type Error struct {
	code   uint32
	desc   string
	parent *Error
}

func (e Error) Error() string {
	return e.desc
}

func (e Error) ABCICode() uint32 {
	return e.code
}

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrap(e, fmt.Sprintf(format, args...))
}

// Is reports whether err is of this kind, following the cause chain and
// looking into every error combined with Append. A nil kind only matches
// a nil error.
func (e *Error) Is(err error) bool {
	if e == nil {
		return errIsNil(err)
	}
	for err != nil {
		switch v := err.(type) {
		case *Error:
			for k := v; k != nil; k = k.parent {
				if k == e {
					return true
				}
			}
			return false
		case unpacker:
			for _, inner := range v.Unpack() {
				if e.Is(inner) {
					return true
				}
			}
			return false
		}
		err = cause(err)
	}
	return false
}

// Wrap adds context to err and returns nil for a nil err. The innermost
// wrap records a stack trace, printed with %+v. Errors that do not wrap a
// kind are reported as internal.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover turns a panic into an ErrPanic assigned to *err. It must be
// deferred directly:
//
//	defer errors.Recover(&err)
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

// stackTrace returns the first stack trace found in the cause chain.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		err = cause(err)
	}
	return nil
}
