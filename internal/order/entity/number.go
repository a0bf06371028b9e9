package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNumber is returned for JSON values that are neither a number, a
// string nor null.
var ErrInvalidNumber = errors.New("entity: invalid number")

// Number is an optional amount or quantity printed exactly as the checkout
// sent it. A string keeps its text ("100.50" stays "100.50") and a JSON number
// is printed the way the storefront's JavaScript prints it. The zero value is
// absent and renders as an empty string.
type Number struct {
	text  string
	valid bool
}

// NewNumber returns a present Number holding f.
func NewNumber(f float64) Number {
	return Number{text: formatNumber(f), valid: true}
}

// Present reports whether the field was sent.
func (n Number) Present() bool { return n.valid }

func (n Number) String() string { return n.text }

// UnmarshalJSON accepts a JSON number, a string or null. An empty string is
// treated as absent.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = Number{}
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ErrInvalidNumber
		}
		*n = Number{text: s, valid: s != ""}
		return nil
	}

	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsInf(f, 0) {
		return ErrInvalidNumber
	}
	*n = NewNumber(f)
	return nil
}

// MarshalJSON writes null for an absent number and a JSON string otherwise,
// so text such as "100.50" survives a round trip.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.text)
}

// formatNumber follows Number.prototype.toString: plain decimals between 1e-6
// and 1e21, shortest exponent form outside that range, and no negative zero.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
