package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const priceScale = 2

// MaxPrice is the largest accepted price.
var MaxPrice = NewPrice(999, 99)

// ErrInvalidPrice is returned when a price is malformed or out of range.
var ErrInvalidPrice = errors.New("price must be a decimal between 0 and 999.99 with at most 2 decimal places")

// Price is a decimal amount kept at two decimal places.
type Price struct {
	amount decimal.Decimal
}

// NewPrice builds a Price from whole units and cents.
func NewPrice(units, cents int64) Price {
	return Price{amount: decimal.New(units*100+cents, -priceScale)}
}

// ParsePrice parses a decimal such as "5", "5.5" or "5.00".
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, ErrInvalidPrice
	}
	p := Price{amount: d}
	if err := p.Validate(); err != nil {
		return Price{}, err
	}
	return Price{amount: d.Round(priceScale)}, nil
}

// Validate reports whether p is within 0..MaxPrice with at most two decimal places.
func (p Price) Validate() error {
	if p.amount.IsNegative() || p.amount.GreaterThan(MaxPrice.amount) || p.amount.Exponent() < -priceScale {
		return ErrInvalidPrice
	}
	return nil
}

// Decimal exposes the amount for arithmetic.
func (p Price) Decimal() decimal.Decimal {
	return p.amount
}

func (p Price) Equal(other Price) bool {
	return p.amount.Equal(other.amount)
}

// String renders the price with exactly two decimals.
func (p Price) String() string {
	return p.amount.StringFixed(priceScale)
}

// MarshalJSON renders the price as a decimal string, e.g. "5.00".
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON accepts either a JSON number or a decimal string.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return ErrInvalidPrice
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer.
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner. Drivers hand back NUMERIC as text or as a
// number; either way the amount is rounded to cents.
func (p *Price) Scan(src any) error {
	if src == nil {
		*p = Price{}
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan price: %w", err)
	}
	*p = Price{amount: d.Round(priceScale)}
	return nil
}
