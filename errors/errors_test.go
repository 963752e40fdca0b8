package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

var (
	errTestApproved = RegisterSub(ErrAlreadyDone, 901, "test approved")
	errTestNested   = RegisterSub(errTestApproved, 902, "test nested")
)

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		kind *Error
		err  error
		want bool
	}{
		"same kind": {
			kind: ErrState,
			err:  ErrState,
			want: true,
		},
		"wrapped kind": {
			kind: ErrState,
			err:  Wrap(Wrap(ErrState, "first"), "second"),
			want: true,
		},
		"different kind": {
			kind: ErrState,
			err:  ErrInput.New("nope"),
			want: false,
		},
		"sub kind matches parent": {
			kind: ErrAlreadyDone,
			err:  errTestApproved.New("twice"),
			want: true,
		},
		"nested sub kind matches root": {
			kind: ErrAlreadyDone,
			err:  Wrap(errTestNested, "deep"),
			want: true,
		},
		"parent does not match sub kind": {
			kind: errTestApproved,
			err:  ErrAlreadyDone.New("generic"),
			want: false,
		},
		"stdlib error": {
			kind: ErrState,
			err:  stderrors.New("stdlib"),
			want: false,
		},
		"multi error containing kind": {
			kind: ErrExpired,
			err:  Append(ErrInput.New("a"), ErrExpired.New("b")),
			want: true,
		},
		"field error": {
			kind: ErrInput,
			err:  Field("Amount", ErrInput, "must be positive"),
			want: true,
		},
		"nil kind and nil error": {
			kind: nil,
			err:  nil,
			want: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Register(ErrState.ABCICode(), "duplicate")
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "nothing"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Field("X", nil, "nothing"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := fn()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %v", err)
	}
}

func TestABCIInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"nil": {
			err:      nil,
			wantCode: SuccessABCICode,
			wantLog:  "",
		},
		"registered kind": {
			err:      Wrap(ErrThreshold, "1 of 2"),
			wantCode: ErrThreshold.ABCICode(),
			wantLog:  "1 of 2: threshold not met",
		},
		"sub kind keeps own code": {
			err:      errTestApproved.New("x"),
			wantCode: 901,
			wantLog:  "x: test approved",
		},
		"stdlib error is redacted": {
			err:      fmt.Errorf("secret path /etc"),
			wantCode: 1,
			wantLog:  "internal error",
		},
		"multi error reports first": {
			err:      Append(ErrInput.New("a"), ErrState.New("b")),
			wantCode: ErrInput.ABCICode(),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want code %d, got %d", tc.wantCode, code)
			}
			if tc.wantLog != "" && log != tc.wantLog {
				t.Errorf("want log %q, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestABCIInfoDebugStack(t *testing.T) {
	_, log := ABCIInfo(Wrap(ErrState, "with stack"), true)
	if !strings.Contains(log, "errors_test.go") {
		t.Fatalf("expected stack trace in debug log, got %q", log)
	}
}

func TestFieldErrors(t *testing.T) {
	err := Append(
		Field("Payee", ErrEmpty, "required"),
		Field("Amount", ErrAmount, "must be positive"),
		Field("Payee", ErrInput, "invalid"),
	)
	if got := len(FieldErrors(err, "Payee")); got != 2 {
		t.Fatalf("want 2 payee errors, got %d", got)
	}
	if got := len(FieldErrors(err, "Deadline")); got != 0 {
		t.Fatalf("want no deadline errors, got %d", got)
	}
}

func TestAppend(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	single := ErrInput.New("single")
	if err := Append(nil, single, nil); err != single {
		t.Fatalf("want single error returned unchanged, got %v", err)
	}
	flat := Append(Append(ErrInput, ErrState), ErrEmpty)
	if n := len(flat.(multiErr)); n != 3 {
		t.Fatalf("want flattened 3 errors, got %d", n)
	}
}
