package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		method   PaymentMethod
		register string
		bank     string
		owed     string
	}{
		{"cash", MethodCash, "20", "0", "0"},
		{"transfer", MethodTransfer, "-50", "70", "0"},
		{"pending", MethodPending, "-50", "0", "70"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(d("50"), d("20"), 1, tt.method)
			assertDec(t, "70", got.TotalToCollect, "total")
			assertDec(t, "20", got.Profit, "profit")
			assertDec(t, tt.register, got.RegisterDelta, "register")
			assertDec(t, tt.bank, got.BankDelta, "bank")
			assertDec(t, tt.owed, got.AmountOwed, "owed")
		})
	}
}

func TestDerive_QuantityIsInformational(t *testing.T) {
	got := Derive(d("10"), d("5"), 3, MethodCash)
	assert.Equal(t, 3, got.Quantity)
	assertDec(t, "15", got.TotalToCollect, "total")
	assertDec(t, "5", got.Profit, "profit")

	assert.Equal(t, 1, Derive(d("1"), d("1"), 0, MethodCash).Quantity)
	assert.Equal(t, 1, Derive(d("1"), d("1"), -4, MethodCash).Quantity)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"50", "50", false},
		{" 12.50 ", "12.5", false},
		{"$1,200.00", "1200", false},
		{"", "0", false},
		{"abc", "", true},
		{"-3", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidAmount, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assertDec(t, tt.want, got, tt.in)
	}
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]PaymentMethod{
		"cash": MethodCash, "Efectivo": MethodCash,
		"transfer": MethodTransfer, "transferencia": MethodTransfer,
		"pending": MethodPending, "pendiente": MethodPending, "": MethodPending,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMethod("card")
	require.ErrorIs(t, err, ErrInvalidMethod)
}

func TestPaid(t *testing.T) {
	assert.True(t, Paid(MethodCash))
	assert.True(t, Paid(MethodTransfer))
	assert.False(t, Paid(MethodPending))
}
