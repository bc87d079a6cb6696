// Package ledger holds the money rules of the errand business: derived
// errand totals, payment settlement, the daily summary and the cash close.
// Everything here is pure; callers persist the results.
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod says how an errand is (or will be) paid.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodPending  PaymentMethod = "pending"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMethod = errors.New("invalid payment method")
)

// ParseMethod accepts the English names and the Spanish ones the business
// uses day to day.
func ParseMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "efectivo":
		return MethodCash, nil
	case "transfer", "transferencia":
		return MethodTransfer, nil
	case "pending", "pendiente", "":
		return MethodPending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}

// ParseAmount parses a non-negative money amount. A leading "$", thousands
// separators and surrounding spaces are tolerated; an empty string is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return d, nil
}

// NormalizeQuantity clamps quantity to at least one.
func NormalizeQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// Totals are the fields derived from an errand's raw inputs.
type Totals struct {
	Quantity       int
	TotalToCollect decimal.Decimal
	Profit         decimal.Decimal
	// RegisterDelta is the expected impact on the cash drawer.
	RegisterDelta decimal.Decimal
	// BankDelta is the amount landing in the bank account.
	BankDelta  decimal.Decimal
	AmountOwed decimal.Decimal
}

// Derive computes the derived errand fields. Quantity does not multiply the
// fee; it is carried for information only.
func Derive(purchaseCost, serviceFee decimal.Decimal, quantity int, method PaymentMethod) Totals {
	total := purchaseCost.Add(serviceFee)
	t := Totals{
		Quantity:       NormalizeQuantity(quantity),
		TotalToCollect: total,
		Profit:         serviceFee,
		RegisterDelta:  purchaseCost.Neg(),
		BankDelta:      decimal.Zero,
		AmountOwed:     decimal.Zero,
	}

	switch method {
	case MethodCash:
		t.RegisterDelta = total.Sub(purchaseCost)
	case MethodTransfer:
		t.BankDelta = total
	default:
		t.AmountOwed = total
	}
	return t
}

// Paid reports whether an errand settled with method counts as collected.
func Paid(method PaymentMethod) bool {
	return method == MethodCash || method == MethodTransfer
}
