package errors

import (
	"fmt"
	"reflect"
)

const (
	// SuccessABCICode is the code of a successful ABCI response.
	SuccessABCICode = 0

	// Errors that do not carry a registered kind are reported with this
	// code. Outside of debug mode their message is hidden as well, so
	// that implementation details do not leak into blocks.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log of an ABCI response for err. Errors of
// a registered kind report their code and message. In debug mode the log
// is printed with %+v, which includes the stack trace.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the outermost error in the cause chain
// that declares one.
func abciCode(err error) uint32 {
	if errIsNil(err) {
		return SuccessABCICode
	}
	for err != nil {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		err = cause(err)
	}
	return internalABCICode
}

// cause returns the error wrapped by err, or nil.
func cause(err error) error {
	if c, ok := err.(causer); ok {
		return c.Cause()
	}
	return nil
}

// errIsNil also reports typed nil pointers stored in an error interface.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	val := reflect.ValueOf(err)
	return val.Kind() == reflect.Ptr && val.IsNil()
}
