package entity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		present bool
		wantErr bool
	}{
		{name: "integer", in: `100`, want: "100", present: true},
		{name: "fraction", in: `99.5`, want: "99.5", present: true},
		{name: "zero", in: `0`, want: "0", present: true},
		{name: "negative", in: `-3`, want: "-3", present: true},
		{name: "negative zero", in: `-0`, want: "0", present: true},
		{name: "trailing zeros dropped like js", in: `100.50`, want: "100.5", present: true},
		{name: "large exponent", in: `1e21`, want: "1e+21", present: true},
		{name: "just below exponent range", in: `123456789012345680000`, want: "123456789012345680000", present: true},
		{name: "small exponent", in: `0.00000015`, want: "1.5e-7", present: true},
		{name: "smallest plain decimal", in: `0.000001`, want: "0.000001", present: true},
		{name: "negative small exponent", in: `-2.5e-10`, want: "-2.5e-10", present: true},
		{name: "numeric string kept as sent", in: `"100.50"`, want: "100.50", present: true},
		{name: "string integer", in: `"250"`, want: "250", present: true},
		{name: "string kept verbatim", in: `"1 200,00"`, want: "1 200,00", present: true},
		{name: "null", in: `null`, want: ""},
		{name: "empty string", in: `""`, want: ""},
		{name: "boolean", in: `true`, wantErr: true},
		{name: "object", in: `{"amount":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var n Number

			// Act
			err := json.Unmarshal([]byte(tt.in), &n)

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.present, n.Present())
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestNewNumber(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "whole", in: 250, want: "250"},
		{name: "fraction", in: 99.5, want: "99.5"},
		{name: "negative zero", in: math.Copysign(0, -1), want: "0"},
		{name: "huge", in: 2e22, want: "2e+22"},
		{name: "tiny", in: 1e-7, want: "1e-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewNumber(tt.in).String())
		})
	}
}

func TestNumber_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "absent", in: `null`, want: `null`},
		{name: "string text survives", in: `"100.50"`, want: `"100.50"`},
		{name: "number", in: `1e21`, want: `"1e+21"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))

			b, err := json.Marshal(n)

			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestNumber_AbsentField(t *testing.T) {
	var item OrderItem
	require.NoError(t, json.Unmarshal([]byte(`{"productName":"Widget"}`), &item))

	assert.False(t, item.Quantity.Present())
	assert.Empty(t, item.Quantity.String())
}

func TestDecodePickupPoint(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *PickupPoint
		wantErr bool
	}{
		{name: "missing", raw: ``, want: nil},
		{name: "null", raw: `null`, want: nil},
		{name: "false", raw: `false`, want: nil},
		{name: "empty string", raw: `""`, want: nil},
		{name: "zero", raw: `0`, want: nil},
		{name: "negative zero", raw: `-0.0`, want: nil},
		{name: "object", raw: `{"name":"Box 42","city":"Brno"}`, want: &PickupPoint{Name: "Box 42", City: "Brno"}},
		{name: "empty object", raw: `{}`, want: &PickupPoint{}},
		{name: "true", raw: `true`, want: &PickupPoint{}},
		{name: "non-empty string", raw: `"box"`, want: &PickupPoint{}},
		{name: "non-zero number", raw: `7`, want: &PickupPoint{}},
		{name: "array", raw: `[]`, want: &PickupPoint{}},
		{name: "object with wrong field type", raw: `{"name":5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := DecodePickupPoint(json.RawMessage(tt.raw))

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContact_IsZero(t *testing.T) {
	var nilContact *Contact
	assert.True(t, nilContact.IsZero())
	assert.True(t, (&Contact{}).IsZero())
	assert.False(t, (&Contact{Email: "a@x.com"}).IsZero())
	assert.False(t, (&Contact{Address: &Address{}}).IsZero())
}

func TestOrder_IsZero(t *testing.T) {
	var nilOrder *Order
	assert.True(t, nilOrder.IsZero())
	assert.True(t, (&Order{}).IsZero())
	assert.True(t, (&Order{Items: []OrderItem{}}).IsZero())
	assert.False(t, (&Order{OrderID: "ORD1"}).IsZero())
	assert.False(t, (&Order{Total: NewNumber(0)}).IsZero())
}
