package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If none or only one non nil error is provided, that error (or nil) is
// returned unchanged. Otherwise a multi error is returned, which reports
// the code of its first element.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if errIsNil(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type multiErr []error

func (m multiErr) Error() string {
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(points, "\n\t"))
}

// ABCICode returns the code of the first error, consistent with a fail
// fast approach.
func (m multiErr) ABCICode() uint32 {
	return abciCode(m[0])
}

// Unpack returns all clubbed errors.
func (m multiErr) Unpack() []error {
	return m
}

type unpacker interface {
	Unpack() []error
}
