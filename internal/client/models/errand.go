package models

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mandaditos/internal/ledger"
	"github.com/dmitrijs2005/mandaditos/internal/timex"
	"github.com/shopspring/decimal"
)

// Errand payload keys.
const (
	FieldClientName     = "clientName"
	FieldDescription    = "description"
	FieldPurchaseCost   = "purchaseCost"
	FieldServiceFee     = "serviceFee"
	FieldQuantity       = "quantity"
	FieldPaymentMethod  = "paymentMethod"
	FieldPaid           = "paid"
	FieldPaidDate       = "paidDate"
	FieldPaidTime       = "paidTime"
	FieldTotalToCollect = "totalToCollect"
	FieldProfit         = "profit"
	FieldCashDelta      = "cashDelta"
	FieldBankDelta      = "bankDelta"
	FieldAmountOwed     = "amountOwed"
	FieldDate           = "date"
	FieldTime           = "time"
	FieldCreatedAt      = "createdAt"
)

// Errand is a task run for a client.
type Errand struct {
	ClientName   string
	Description  string
	PurchaseCost decimal.Decimal
	ServiceFee   decimal.Decimal
	Quantity     int
	Method       ledger.PaymentMethod
	Paid         bool
	PaidDate     string
	PaidTime     string
	Date         string
	Time         string
	CreatedAt    string

	// Derived; see Recompute.
	TotalToCollect decimal.Decimal
	Profit         decimal.Decimal
	CashDelta      decimal.Decimal
	BankDelta      decimal.Decimal
	AmountOwed     decimal.Decimal
}

// ErrandInput is raw user input. On update, empty fields keep the stored value.
type ErrandInput struct {
	ClientName   string
	Description  string
	PurchaseCost string
	ServiceFee   string
	Quantity     string
	Method       string
	Date         string
	Time         string
}

// NewErrand validates in and builds an errand stamped with c.
func NewErrand(in ErrandInput, c timex.Clock) (Errand, error) {
	now := c.Now()
	e := Errand{
		Quantity:  1,
		Method:    ledger.MethodPending,
		Date:      now.Format(timex.DateLayout),
		Time:      now.Format(timex.TimeLayout),
		CreatedAt: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if strings.TrimSpace(in.Description) == "" {
		return Errand{}, invalid(FieldDescription, "is required")
	}
	if strings.TrimSpace(in.ServiceFee) == "" {
		return Errand{}, invalid(FieldServiceFee, "is required")
	}
	if err := e.Apply(in); err != nil {
		return Errand{}, err
	}
	return e, nil
}

// Apply overlays the non-empty fields of in and recomputes derived fields.
func (e *Errand) Apply(in ErrandInput) error {
	next := *e

	if s := strings.TrimSpace(in.ClientName); s != "" {
		next.ClientName = s
	}
	if s := strings.TrimSpace(in.Description); s != "" {
		next.Description = s
	}
	if in.PurchaseCost != "" {
		v, err := ledger.ParseAmount(in.PurchaseCost)
		if err != nil {
			return invalid(FieldPurchaseCost, "%v", err)
		}
		next.PurchaseCost = v
	}
	if in.ServiceFee != "" {
		v, err := ledger.ParseAmount(in.ServiceFee)
		if err != nil {
			return invalid(FieldServiceFee, "%v", err)
		}
		next.ServiceFee = v
	}
	if s := strings.TrimSpace(in.Quantity); s != "" {
		q, err := strconv.Atoi(s)
		if err != nil {
			return invalid(FieldQuantity, "must be a whole number")
		}
		next.Quantity = q
	}
	if in.Method != "" {
		m, err := ledger.ParseMethod(in.Method)
		if err != nil {
			return invalid(FieldPaymentMethod, "%v", err)
		}
		next.Method = m
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

	next.Recompute()
	if next.Paid && next.PaidDate == "" {
		next.PaidDate, next.PaidTime = next.Date, next.Time
	}
	*e = next
	return nil
}

// Recompute refreshes the derived fields from the raw inputs.
func (e *Errand) Recompute() {
	t := ledger.Derive(e.PurchaseCost, e.ServiceFee, e.Quantity, e.Method)
	e.Quantity = t.Quantity
	e.TotalToCollect = t.TotalToCollect
	e.Profit = t.Profit
	e.CashDelta = t.RegisterDelta
	e.BankDelta = t.BankDelta
	e.AmountOwed = t.AmountOwed
	e.Paid = ledger.Paid(e.Method)
	if !e.Paid {
		e.PaidDate, e.PaidTime = "", ""
	}
}

// MarkPaid settles the errand with method at the given date and time.
func (e *Errand) MarkPaid(method ledger.PaymentMethod, date, hhmm string) error {
	if !timex.ValidDate(date) {
		return invalid(FieldPaidDate, "must be YYYY-MM-DD")
	}
	e.Method = method
	e.Recompute()
	if e.Paid {
		e.PaidDate, e.PaidTime = date, hhmm
	}
	return nil
}

func (e Errand) Payload() Payload {
	return Payload{
		FieldClientName:     e.ClientName,
		FieldDescription:    e.Description,
		FieldPurchaseCost:   e.PurchaseCost.String(),
		FieldServiceFee:     e.ServiceFee.String(),
		FieldQuantity:       e.Quantity,
		FieldPaymentMethod:  string(e.Method),
		FieldPaid:           e.Paid,
		FieldPaidDate:       e.PaidDate,
		FieldPaidTime:       e.PaidTime,
		FieldTotalToCollect: e.TotalToCollect.String(),
		FieldProfit:         e.Profit.String(),
		FieldCashDelta:      e.CashDelta.String(),
		FieldBankDelta:      e.BankDelta.String(),
		FieldAmountOwed:     e.AmountOwed.String(),
		FieldDate:           e.Date,
		FieldTime:           e.Time,
		FieldCreatedAt:      e.CreatedAt,
	}
}

// ErrandFromPayload reads an errand back. Derived fields are taken as
// stored; call Recompute to refresh them.
func ErrandFromPayload(p Payload) Errand {
	method, err := ledger.ParseMethod(p.Text(FieldPaymentMethod))
	if err != nil {
		method = ledger.MethodPending
	}
	return Errand{
		ClientName:     p.Text(FieldClientName),
		Description:    p.Text(FieldDescription),
		PurchaseCost:   p.Decimal(FieldPurchaseCost),
		ServiceFee:     p.Decimal(FieldServiceFee),
		Quantity:       ledger.NormalizeQuantity(p.Int(FieldQuantity)),
		Method:         method,
		Paid:           p.Bool(FieldPaid),
		PaidDate:       p.Text(FieldPaidDate),
		PaidTime:       p.Text(FieldPaidTime),
		Date:           p.Text(FieldDate),
		Time:           p.Text(FieldTime),
		CreatedAt:      p.Text(FieldCreatedAt),
		TotalToCollect: p.Decimal(FieldTotalToCollect),
		Profit:         p.Decimal(FieldProfit),
		CashDelta:      p.Decimal(FieldCashDelta),
		BankDelta:      p.Decimal(FieldBankDelta),
		AmountOwed:     p.Decimal(FieldAmountOwed),
	}
}

// Line projects the errand for the ledger reports.
func (e Errand) Line() ledger.ErrandLine {
	return ledger.ErrandLine{
		Date:           e.Date,
		Time:           e.Time,
		Method:         e.Method,
		Paid:           e.Paid,
		PurchaseCost:   e.PurchaseCost,
		ServiceFee:     e.ServiceFee,
		TotalToCollect: e.TotalToCollect,
		AmountOwed:     e.AmountOwed,
	}
}
