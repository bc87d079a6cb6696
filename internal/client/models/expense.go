package models

import (
	"strings"

	"github.com/dmitrijs2005/mandaditos/internal/ledger"
	"github.com/dmitrijs2005/mandaditos/internal/timex"
	"github.com/shopspring/decimal"
)

const (
	FieldCategory = "category"
	FieldAmount   = "amount"
	FieldNote     = "note"
)

// Expense is an operating or personal cash outlay.
type Expense struct {
	Category  string
	Amount    decimal.Decimal
	Note      string
	Date      string
	Time      string
	CreatedAt string
}

type ExpenseInput struct {
	Category string
	Amount   string
	Note     string
	Date     string
	Time     string
}

func NewExpense(in ExpenseInput, c timex.Clock) (Expense, error) {
	now := c.Now()
	x := Expense{
		Date:      now.Format(timex.DateLayout),
		Time:      now.Format(timex.TimeLayout),
		CreatedAt: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if strings.TrimSpace(in.Category) == "" {
		return Expense{}, invalid(FieldCategory, "is required")
	}
	if strings.TrimSpace(in.Amount) == "" {
		return Expense{}, invalid(FieldAmount, "is required")
	}
	if err := x.Apply(in); err != nil {
		return Expense{}, err
	}
	return x, nil
}

func (x *Expense) Apply(in ExpenseInput) error {
	next := *x
	if s := strings.TrimSpace(in.Category); s != "" {
		next.Category = s
	}
	if in.Amount != "" {
		v, err := ledger.ParseAmount(in.Amount)
		if err != nil {
			return invalid(FieldAmount, "%v", err)
		}
		if !v.IsPositive() {
			return invalid(FieldAmount, "must be greater than zero")
		}
		next.Amount = v
	}
	if s := strings.TrimSpace(in.Note); s != "" {
		next.Note = s
	}
	if s := strings.TrimSpace(in.Date); s != "" {
		if !timex.ValidDate(s) {
			return invalid(FieldDate, "must be YYYY-MM-DD")
		}
		next.Date = s
	}
	if s := strings.TrimSpace(in.Time); s != "" {
		next.Time = s
	}
	*x = next
	return nil
}

func (x Expense) Payload() Payload {
	return Payload{
		FieldCategory:  x.Category,
		FieldAmount:    x.Amount.String(),
		FieldNote:      x.Note,
		FieldDate:      x.Date,
		FieldTime:      x.Time,
		FieldCreatedAt: x.CreatedAt,
	}
}

func ExpenseFromPayload(p Payload) Expense {
	return Expense{
		Category:  p.Text(FieldCategory),
		Amount:    p.Decimal(FieldAmount),
		Note:      p.Text(FieldNote),
		Date:      p.Text(FieldDate),
		Time:      p.Text(FieldTime),
		CreatedAt: p.Text(FieldCreatedAt),
	}
}

func (x Expense) Line() ledger.ExpenseLine {
	return ledger.ExpenseLine{Date: x.Date, Amount: x.Amount}
}
