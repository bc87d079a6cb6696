package ledger

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrandLine is the slice of an errand the reports need.
type ErrandLine struct {
	Date           string
	Time           string
	Method         PaymentMethod
	Paid           bool
	PurchaseCost   decimal.Decimal
	ServiceFee     decimal.Decimal
	TotalToCollect decimal.Decimal
	AmountOwed     decimal.Decimal
}

// ExpenseLine is the slice of an expense the reports need.
type ExpenseLine struct {
	Date   string
	Amount decimal.Decimal
}

type MethodTotals struct {
	Count int
	Total decimal.Decimal
}

type HourTotals struct {
	Hour  int
	Count int
	Total decimal.Decimal
}

// Summary is the end-of-day picture for one date.
type Summary struct {
	Date string

	Errands        int
	PaidErrands    int
	PendingErrands int

	ServiceIncomePaid    decimal.Decimal
	ServiceIncomePending decimal.Decimal
	CollectedPaid        decimal.Decimal
	CollectedPending     decimal.Decimal

	Expenses     decimal.Decimal
	Opening      decimal.Decimal
	HasOpening   bool
	ExpectedCash decimal.Decimal

	ByMethod map[PaymentMethod]MethodTotals
	ByHour   []HourTotals

	// Unpaid errands of any date.
	OutstandingCount int
	OutstandingOwed  decimal.Decimal
}

// DailySummary aggregates errands and expenses dated date. opening is the
// day's opening cash when hasOpening is true.
func DailySummary(date string, errands []ErrandLine, expenses []ExpenseLine, opening decimal.Decimal, hasOpening bool) Summary {
	s := Summary{
		Date:                 date,
		ServiceIncomePaid:    decimal.Zero,
		ServiceIncomePending: decimal.Zero,
		CollectedPaid:        decimal.Zero,
		CollectedPending:     decimal.Zero,
		Expenses:             decimal.Zero,
		Opening:              decimal.Zero,
		HasOpening:           hasOpening,
		ByMethod:             make(map[PaymentMethod]MethodTotals),
		OutstandingOwed:      decimal.Zero,
	}
	if hasOpening {
		s.Opening = opening
	}

	hours := make(map[int]*HourTotals)

	for _, e := range errands {
		if !e.Paid {
			s.OutstandingCount++
			owed := e.AmountOwed
			if owed.IsZero() {
				owed = e.TotalToCollect
			}
			s.OutstandingOwed = s.OutstandingOwed.Add(owed)
		}

		if e.Date != date {
			continue
		}

		s.Errands++
		if e.Paid {
			s.PaidErrands++
			s.ServiceIncomePaid = s.ServiceIncomePaid.Add(e.ServiceFee)
			s.CollectedPaid = s.CollectedPaid.Add(e.TotalToCollect)
		} else {
			s.PendingErrands++
			s.ServiceIncomePending = s.ServiceIncomePending.Add(e.ServiceFee)
			s.CollectedPending = s.CollectedPending.Add(e.TotalToCollect)
		}

		m := s.ByMethod[e.Method]
		m.Count++
		m.Total = m.Total.Add(e.TotalToCollect)
		s.ByMethod[e.Method] = m

		if h, ok := hourOf(e.Time); ok {
			b, exists := hours[h]
			if !exists {
				b = &HourTotals{Hour: h, Total: decimal.Zero}
				hours[h] = b
			}
			b.Count++
			b.Total = b.Total.Add(e.TotalToCollect)
		}
	}

	for _, x := range expenses {
		if x.Date == date {
			s.Expenses = s.Expenses.Add(x.Amount)
		}
	}

	for _, b := range hours {
		s.ByHour = append(s.ByHour, *b)
	}
	sort.Slice(s.ByHour, func(i, j int) bool { return s.ByHour[i].Hour < s.ByHour[j].Hour })

	s.ExpectedCash = s.Opening.Add(s.ServiceIncomePaid).Sub(s.Expenses)
	return s
}

func hourOf(hhmm string) (int, bool) {
	h, _, ok := strings.Cut(hhmm, ":")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(h)
	if err != nil || n < 0 || n > 23 {
		return 0, false
	}
	return n, true
}

// CashClose is the drawer count expected at closing time.
type CashClose struct {
	Date             string
	Opening          decimal.Decimal
	Purchases        decimal.Decimal
	CashCollections  decimal.Decimal
	Expenses         decimal.Decimal
	ExpectedInDrawer decimal.Decimal
}

// Close computes opening - purchases of the selected errands dated date +
// cash collected on the selected errands - the selected expenses.
func Close(date string, opening decimal.Decimal, errands []ErrandLine, expenses []ExpenseLine) CashClose {
	c := CashClose{
		Date:            date,
		Opening:         opening,
		Purchases:       decimal.Zero,
		CashCollections: decimal.Zero,
		Expenses:        decimal.Zero,
	}
	for _, e := range errands {
		if e.Date == date {
			c.Purchases = c.Purchases.Add(e.PurchaseCost)
		}
		if e.Paid && e.Method == MethodCash {
			c.CashCollections = c.CashCollections.Add(e.TotalToCollect)
		}
	}
	for _, x := range expenses {
		c.Expenses = c.Expenses.Add(x.Amount)
	}
	c.ExpectedInDrawer = opening.Sub(c.Purchases).Add(c.CashCollections).Sub(c.Expenses)
	return c
}
