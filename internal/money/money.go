// Package money provides a fixed-point monetary amount.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Amount is a decimal monetary value. Arithmetic is exact; rounding only
// happens in String.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// New returns an amount from a float. Use for literals and seed data only.
func New(v float64) Amount {
	return Amount{d: decimal.NewFromFloat(v)}
}

// FromCents returns an amount from minor units.
func FromCents(cents int64) Amount {
	return Amount{d: decimal.New(cents, -2)}
}

// Parse reads a decimal string such as "287.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// MustParse is Parse that panics; for tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// Times multiplies by an integer quantity.
func (a Amount) Times(qty int) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(int64(qty)))}
}

// MulRate multiplies by a rate such as 0.15.
func (a Amount) MulRate(rate decimal.Decimal) Amount {
	return Amount{d: a.d.Mul(rate)}
}

func (a Amount) IsZero() bool             { return a.d.IsZero() }
func (a Amount) IsNegative() bool         { return a.d.IsNegative() }
func (a Amount) Equal(b Amount) bool      { return a.d.Equal(b.d) }
func (a Amount) Cmp(b Amount) int         { return a.d.Cmp(b.d) }
func (a Amount) Decimal() decimal.Decimal { return a.d }

// Float64 is lossy and only meant for charts and logs.
func (a Amount) Float64() float64 {
	return a.d.InexactFloat64()
}

// String renders the amount rounded to cents.
func (a Amount) String() string {
	return a.d.StringFixed(2)
}

// Sum adds all amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

// UnmarshalJSON accepts numbers and quoted numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	a.d = d
	return nil
}

// MarshalBSONValue stores the amount as Decimal128.
func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(a.d.String())
	if err != nil {
		return 0, nil, fmt.Errorf("amount to decimal128: %w", err)
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue reads Decimal128, double, int or string values.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Decimal128:
		d128, ok := raw.Decimal128OK()
		if !ok {
			return fmt.Errorf("invalid decimal128 amount")
		}
		d, err := decimal.NewFromString(d128.String())
		if err != nil {
			return err
		}
		a.d = d
	case bsontype.Double:
		a.d = decimal.NewFromFloat(raw.Double())
	case bsontype.Int32:
		a.d = decimal.NewFromInt32(raw.Int32())
	case bsontype.Int64:
		a.d = decimal.NewFromInt(raw.Int64())
	case bsontype.String:
		d, err := decimal.NewFromString(raw.StringValue())
		if err != nil {
			return err
		}
		a.d = d
	case bsontype.Null:
		*a = Zero
	default:
		return fmt.Errorf("cannot decode %s into amount", t)
	}
	return nil
}
