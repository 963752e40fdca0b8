package custody

import (
	"encoding/json"
	"time"

	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// UnixTime represents a point in time as POSIX time, with seconds
// precision. All deadlines, voting windows and timelocks use it.
type UnixTime int64

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// IsZero returns true if this time represents a zero value.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add modifies this UNIX time by given duration.
func (t UnixTime) Add(d UnixDuration) UnixTime {
	return t + UnixTime(d)
}

// Sub returns the duration between t and u.
func (t UnixTime) Sub(u UnixTime) UnixDuration {
	return UnixDuration(t - u)
}

// AsUnixTime converts given Time structure into its UNIX time representation.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// UnmarshalJSON supports unmarshaling both as time.Time and from a number.
// Usually a number is used as a representation of this time in JSON but it is
// convinient to use a string format in configurations (ie genesis file).
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		unix := UnixTime(stdtime.Unix())
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = unix
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// Validate returns an error if this time value is invalid.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrInput, "negative value")
	}
	return nil
}

// String returns the usual string representation of this time as the time.Time
// structure would.
func (t UnixTime) String() string {
	return t.Time().String()
}

// UnixDuration represents a time duration with seconds precision.
type UnixDuration int64

// AsUnixDuration converts given time.Duration into UnixDuration. Any
// precision below one second is dropped.
func AsUnixDuration(d time.Duration) UnixDuration {
	return UnixDuration(d / time.Second)
}

// Duration returns the standard library representation.
func (d UnixDuration) Duration() time.Duration {
	return time.Duration(d) * time.Second
}

// MarshalJSON serializes the duration in the human readable form, for
// example "72h0m0s".
func (d UnixDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration().String())
}

// UnmarshalJSON accepts both a number of seconds and the time.Duration
// string format.
func (d *UnixDuration) UnmarshalJSON(raw []byte) error {
	var secs int64
	if err := json.Unmarshal(raw, &secs); err == nil {
		*d = UnixDuration(secs)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "invalid duration format")
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*d = AsUnixDuration(dur)
	return nil
}

// Validate returns an error if the duration is negative.
func (d UnixDuration) Validate() error {
	if d < 0 {
		return errors.Wrap(errors.ErrInput, "negative duration")
	}
	return nil
}

func (d UnixDuration) String() string {
	return d.Duration().String()
}
