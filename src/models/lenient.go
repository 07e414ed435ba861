// backend/src/models/lenient.go
package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Upstream servlets are hand-built JSON writers: numbers sometimes arrive
// quoted and booleans sometimes arrive as strings. The types below accept
// both shapes instead of failing the whole record.

var jsonNull = []byte("null")

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), jsonNull)
}

// unquote returns the string content of a JSON string literal, or the raw
// token text for any other scalar.
func unquote(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return string(b), false
}

// FlexString is a display identifier that may be a JSON number or string.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*s = ""
		return nil
	}
	raw, _ := unquote(b)
	*s = FlexString(raw)
	return nil
}

func (s FlexString) String() string { return string(s) }

// FlexInt is an integer that may arrive as a number or numeric string.
// Unparsable or out-of-range input becomes zero.
type FlexInt int64

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*n = 0
		return nil
	}
	raw, _ := unquote(b)
	raw = strings.TrimSpace(raw)
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*n = FlexInt(v)
		return nil
	}
	// NaN, infinities and values beyond int64 fail the range check.
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= math.MinInt64 && f < -math.MinInt64 {
		*n = FlexInt(int64(f))
		return nil
	}
	*n = 0
	return nil
}

// FlexBool is a boolean that may arrive as a bool, number or string.
// Strings that strconv.ParseBool understands keep their meaning; any other
// non-empty string counts as true.
type FlexBool bool

func (v *FlexBool) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*v = false
		return nil
	}
	raw, quoted := unquote(b)
	raw = strings.TrimSpace(raw)
	if parsed, err := strconv.ParseBool(raw); err == nil {
		*v = FlexBool(parsed)
		return nil
	}
	if !quoted {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			*v = f != 0
			return nil
		}
	}
	*v = raw != ""
	return nil
}

// Amount is a money magnitude. Quoted and bare numbers are accepted; anything
// else decodes to zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount builds an Amount from a float.
func NewAmount(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		a.Decimal = decimal.Zero
		return nil
	}
	raw, _ := unquote(b)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		d = decimal.Zero
	}
	a.Decimal = d
	return nil
}

// DisplayDate is shown as delivered when it is a string. A bare number is
// treated as a Unix timestamp in milliseconds and formatted for display.
type DisplayDate string

// DisplayDateLayout matches the "MMM dd, yyyy" strings the servlets emit.
const DisplayDateLayout = "Jan 02, 2006"

func (d *DisplayDate) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*d = ""
		return nil
	}
	raw, quoted := unquote(b)
	if quoted {
		*d = DisplayDate(raw)
		return nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*d = DisplayDate(raw)
		return nil
	}
	*d = DisplayDate(time.UnixMilli(ms).UTC().Format(DisplayDateLayout))
	return nil
}
