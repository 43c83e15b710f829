package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Lenient wire values
// ============================================================

// ParseAmount parses a decimal from user or wire input.
// Surrounding whitespace is ignored; anything else that is not a number is an *ErrParse.
func ParseAmount(field, input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return decimal.Zero, &ErrParse{Field: field, Input: input}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ErrParse{Field: field, Input: input}
	}
	return d, nil
}

// Numeric keeps a numeric wire field as raw text so that a non-numeric value
// does not fail decoding of the surrounding object.
type Numeric struct {
	raw string
}

// NewNumeric builds a Numeric from raw text.
func NewNumeric(raw string) Numeric {
	return Numeric{raw: raw}
}

// NumericOf builds a Numeric holding d.
func NumericOf(d decimal.Decimal) Numeric {
	return Numeric{raw: d.String()}
}

// Raw returns the text as received.
func (n Numeric) Raw() string {
	return n.raw
}

// Decimal parses the held value.
func (n Numeric) Decimal() (decimal.Decimal, error) {
	return ParseAmount("numeric", n.raw)
}

// OrZero parses the held value, degrading to zero when absent or unparseable.
func (n Numeric) OrZero() decimal.Decimal {
	d, err := n.Decimal()
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	switch {
	case s == "null":
		n.raw = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		n.raw = str
	default:
		n.raw = s
	}
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	d, err := n.Decimal()
	if err != nil {
		return []byte("null"), nil
	}
	return []byte(d.String()), nil
}

// Timestamp is an optional point in time. Missing or unparseable input leaves it invalid.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// Layouts accepted from the ledger. Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// At returns a valid Timestamp for t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// ParseTimestamp parses s with the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t), nil
		}
	}
	return Timestamp{}, &ErrParse{Field: "timestamp", Input: s}
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	*ts = Timestamp{}

	switch {
	case s == "null" || s == "":
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		if parsed, err := ParseTimestamp(str); err == nil {
			*ts = parsed
		}
	default:
		// epoch milliseconds
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			*ts = At(time.UnixMilli(ms).UTC())
		}
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// Identifier is an id the ledger may send as a JSON string or number.
type Identifier string

func (id *Identifier) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	switch {
	case s == "null":
		*id = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = Identifier(str)
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return err
		}
		*id = Identifier(num.String())
	}
	return nil
}
