package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ccoveille/go-safecast"
)

// Number is a numeric input that accepts a JSON number or a numeric string.
// Set reports whether the field was present and not null, Valid whether it parsed.
type Number struct {
	Value float64
	Set   bool
	Valid bool
}

// UnmarshalJSON never fails, unparseable input leaves Valid false.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	*n = Number{Set: true}

	raw := string(b)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	n.Value = v
	n.Valid = true
	return nil
}

// Ptr returns the value if it was present and parseable, nil otherwise.
func (n Number) Ptr() *float64 {
	if !n.Set || !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Invalid reports whether the field was present but could not be parsed.
func (n Number) Invalid() bool {
	return n.Set && !n.Valid
}

// ClientTime is a timestamp sent by a client, either as a string or as epoch milliseconds.
type ClientTime string

func (t *ClientTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case bytes.HasPrefix(b, []byte(`"`)):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = ClientTime(s)
	default:
		v, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return err
		}
		ms, err := safecast.ToInt64(math.Trunc(v))
		if err != nil {
			// out of range, left for the time parser to reject
			*t = ClientTime(b)
			return nil
		}
		*t = ClientTime(strconv.FormatInt(ms, 10))
	}
	return nil
}

// String returns the raw timestamp.
func (t ClientTime) String() string {
	return string(t)
}
