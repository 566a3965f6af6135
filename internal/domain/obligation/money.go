package obligation

import (
	"fmt"

	"github.com/ipfolio/patmaint/pkg/errors"
)

// Money is a value object representing an amount in a specific currency.
// Amount is in the smallest currency unit (cents for USD) to keep fee
// arithmetic exact.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"` // ISO 4217 code
}

// NewMoney creates a Money value object.
func NewMoney(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// ToFloat64 converts the amount to the major currency unit.
func (m Money) ToFloat64() float64 {
	return float64(m.Amount) / 100.0
}

// Add sums two Money values of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, errors.InvalidParam("cannot add money with different currencies")
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Validate ensures the money value is well formed.
func (m Money) Validate() error {
	if m.Amount < 0 {
		return errors.Validation("money amount cannot be negative")
	}
	if m.Currency == "" {
		return errors.Validation("currency code cannot be empty")
	}
	return nil
}

// String renders the amount in major units, e.g. "2150.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Amount/100, m.Amount%100, m.Currency)
}
