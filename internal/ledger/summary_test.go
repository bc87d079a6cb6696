package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(date, hhmm string, method PaymentMethod, purchase, fee string) ErrandLine {
	t := Derive(d(purchase), d(fee), 1, method)
	return ErrandLine{
		Date:           date,
		Time:           hhmm,
		Method:         method,
		Paid:           Paid(method),
		PurchaseCost:   d(purchase),
		ServiceFee:     d(fee),
		TotalToCollect: t.TotalToCollect,
		AmountOwed:     t.AmountOwed,
	}
}

func TestDailySummary(t *testing.T) {
	errands := []ErrandLine{
		line("2024-05-01", "09:10", MethodCash, "50", "20"),
		line("2024-05-01", "09:45", MethodTransfer, "30", "10"),
		line("2024-05-01", "14:00", MethodPending, "100", "25"),
		line("2024-04-30", "18:00", MethodPending, "5", "5"),
	}
	expenses := []ExpenseLine{
		{Date: "2024-05-01", Amount: d("15")},
		{Date: "2024-04-30", Amount: d("99")},
	}

	s := DailySummary("2024-05-01", errands, expenses, d("200"), true)

	assert.Equal(t, 3, s.Errands)
	assert.Equal(t, 2, s.PaidErrands)
	assert.Equal(t, 1, s.PendingErrands)
	assertDec(t, "30", s.ServiceIncomePaid, "service paid")
	assertDec(t, "25", s.ServiceIncomePending, "service pending")
	assertDec(t, "110", s.CollectedPaid, "collected paid")
	assertDec(t, "125", s.CollectedPending, "collected pending")
	assertDec(t, "15", s.Expenses, "expenses")
	assertDec(t, "215", s.ExpectedCash, "expected cash")

	require.Len(t, s.ByMethod, 3)
	assert.Equal(t, 1, s.ByMethod[MethodCash].Count)
	assertDec(t, "70", s.ByMethod[MethodCash].Total, "cash total")

	require.Len(t, s.ByHour, 2)
	assert.Equal(t, 9, s.ByHour[0].Hour)
	assert.Equal(t, 2, s.ByHour[0].Count)
	assert.Equal(t, 14, s.ByHour[1].Hour)

	assert.Equal(t, 2, s.OutstandingCount)
	assertDec(t, "135", s.OutstandingOwed, "outstanding")
}

func TestDailySummary_NoOpening(t *testing.T) {
	s := DailySummary("2024-05-01", nil, []ExpenseLine{{Date: "2024-05-01", Amount: d("10")}}, d("999"), false)

	assert.False(t, s.HasOpening)
	assertDec(t, "0", s.Opening, "opening")
	assertDec(t, "-10", s.ExpectedCash, "expected cash")
	assert.Empty(t, s.ByHour)
}

func TestClose(t *testing.T) {
	errands := []ErrandLine{
		line("2024-05-01", "09:00", MethodCash, "50", "20"),
		line("2024-05-01", "10:00", MethodTransfer, "30", "10"),
		line("2024-04-30", "10:00", MethodCash, "40", "10"),
	}
	expenses := []ExpenseLine{{Date: "2024-05-01", Amount: d("12")}}

	c := Close("2024-05-01", d("100"), errands, expenses)

	assertDec(t, "80", c.Purchases, "purchases")
	assertDec(t, "120", c.CashCollections, "cash collections")
	assertDec(t, "12", c.Expenses, "expenses")
	assertDec(t, "128", c.ExpectedInDrawer, "drawer")
}

func TestHourOf(t *testing.T) {
	h, ok := hourOf("07:30")
	assert.True(t, ok)
	assert.Equal(t, 7, h)

	_, ok = hourOf("")
	assert.False(t, ok)
	_, ok = hourOf("25:00")
	assert.False(t, ok)
}
