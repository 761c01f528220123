// Copyright (C) 2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package fixconv implements the lenient, error-accumulating type coercion
// used by the scan driver when promoting a hot-tag byte span into a typed
// column value. Failures never propagate as Go errors across the row
// boundary - they are recorded on an ErrorAccumulator and the column is
// left null.
package fixconv

import (
	"errors"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
)

// semicolonFormat joins accumulated errors with "; ", matching the
// parse_error wire format consumers filter and group on.
func semicolonFormat(errs []error) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	out := ""
	for i, m := range msgs {
		if i > 0 {
			out += "; "
		}
		out += m
	}
	return out
}

// ErrorAccumulator collects human-readable coercion failures for a single
// row. Its Join output becomes that row's parse_error column.
type ErrorAccumulator struct {
	err *multierror.Error
}

// Add appends a failure message.
func (e *ErrorAccumulator) Add(msg string) {
	e.err = multierror.Append(e.err, errors.New(msg))
}

// Empty reports whether no failures were recorded.
func (e *ErrorAccumulator) Empty() bool {
	return e.err == nil || len(e.err.Errors) == 0
}

// Join concatenates all recorded messages with "; ", matching the wire
// format consumers filter and group on.
func (e *ErrorAccumulator) Join() string {
	if e.Empty() {
		return ""
	}
	e.err.ErrorFormat = semicolonFormat
	return e.err.Error()
}

// Int64 parses a signed 64-bit integer from the exact byte span, rejecting
// any trailing characters. An empty span is not an error - it reports
// ok=false with no message, so the caller yields a null column.
func Int64(field string, raw []byte, errs *ErrorAccumulator) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		errs.Add("Invalid " + field + ": '" + string(raw) + "'")
		return 0, false
	}
	return v, true
}

// Float64 parses a 64-bit float from the exact byte span, rejecting any
// trailing characters. An empty span is not an error.
func Float64(field string, raw []byte, errs *ErrorAccumulator) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		errs.Add("Invalid " + field + ": '" + string(raw) + "'")
		return 0, false
	}
	return v, true
}

// Timestamp parses the FIX UTCTimestamp grammar YYYYMMDD-HH:MM:SS[.sss],
// validating every component's range and returning a UTC time truncated to
// microsecond precision (fractional seconds are 1-3 digits, right-padded
// with zeros to exactly 3 before conversion to microseconds). An empty
// span is not an error.
func Timestamp(field string, raw []byte, errs *ErrorAccumulator) (time.Time, bool) {
	if len(raw) == 0 {
		return time.Time{}, false
	}

	t, reason, ok := parseTimestamp(raw)
	if !ok {
		if reason != "" {
			errs.Add("Invalid " + field + ": '" + string(raw) + "' (" + reason + ")")
		}
		return time.Time{}, false
	}
	return t, true
}

// parseTimestamp reports ok=false with an empty reason when raw is too short
// to hold a YYYYMMDD-HH:MM:SS prefix, matching ConvertToTimestamp's bare
// `return false` for this case - no error is recorded, the field is just
// treated as absent.
func parseTimestamp(raw []byte) (time.Time, string, bool) {
	const minLen = 17 // YYYYMMDD-HH:MM:SS
	if len(raw) < minLen {
		return time.Time{}, "", false
	}

	digits2 := func(off int) (int, bool) {
		if off+1 >= len(raw) {
			return 0, false
		}
		a, b := raw[off], raw[off+1]
		if a < '0' || a > '9' || b < '0' || b > '9' {
			return 0, false
		}
		return int(a-'0')*10 + int(b-'0'), true
	}
	digits4 := func(off int) (int, bool) {
		if off+3 >= len(raw) {
			return 0, false
		}
		v := 0
		for i := 0; i < 4; i++ {
			c := raw[off+i]
			if c < '0' || c > '9' {
				return 0, false
			}
			v = v*10 + int(c-'0')
		}
		return v, true
	}

	year, ok := digits4(0)
	if !ok {
		return time.Time{}, "Invalid digit", false
	}
	month, ok := digits2(4)
	if !ok {
		return time.Time{}, "Invalid digit", false
	}
	day, ok := digits2(6)
	if !ok {
		return time.Time{}, "Invalid digit", false
	}
	if year < 1900 || year > 2100 {
		return time.Time{}, "Year out of range", false
	}
	if month < 1 || month > 12 {
		return time.Time{}, "Month out of range", false
	}
	if day < 1 || day > 31 {
		return time.Time{}, "Day out of range", false
	}
	if raw[8] != '-' {
		return time.Time{}, "Missing date-time separator", false
	}

	hour, ok := digits2(9)
	if !ok {
		return time.Time{}, "Invalid digit", false
	}
	minute, ok := digits2(12)
	if !ok {
		return time.Time{}, "Invalid digit", false
	}
	second, ok := digits2(15)
	if !ok {
		return time.Time{}, "Invalid digit", false
	}
	if hour > 23 {
		return time.Time{}, "Hour out of range", false
	}
	if minute > 59 {
		return time.Time{}, "Minute out of range", false
	}
	if second > 59 {
		return time.Time{}, "Second out of range", false
	}
	if raw[11] != ':' || raw[14] != ':' {
		return time.Time{}, "Missing time separators", false
	}

	micros := 0
	if len(raw) > 17 && raw[17] == '.' {
		ms, digits := 0, 0
		for i := 18; i < len(raw) && i < 21 && raw[i] >= '0' && raw[i] <= '9'; i++ {
			ms = ms*10 + int(raw[i]-'0')
			digits++
		}
		for digits < 3 {
			ms *= 10
			digits++
		}
		micros = ms * 1000
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, micros*1000, time.UTC)
	return t, "", true
}
