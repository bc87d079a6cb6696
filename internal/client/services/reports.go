package services

import (
	"context"

	"github.com/dmitrijs2005/mandaditos/internal/ledger"
	"github.com/shopspring/decimal"
)

// ReportService computes the day views from the local lists.
type ReportService interface {
	DailySummary(ctx context.Context, date string) ledger.Summary
	CashClose(ctx context.Context, date string) ledger.CashClose
}

type reportService struct {
	errands  ErrandService
	expenses ExpenseService
	openings DayOpeningService
}

func NewReportService(e ErrandService, x ExpenseService, o DayOpeningService) ReportService {
	return &reportService{errands: e, expenses: x, openings: o}
}

func (s *reportService) opening(ctx context.Context, date string) (decimal.Decimal, bool) {
	it, ok := s.openings.ByDate(ctx, date)
	if !ok {
		return decimal.Zero, false
	}
	return it.Value.OpeningCash, true
}

func (s *reportService) expenseLines(ctx context.Context, date string) []ledger.ExpenseLine {
	var out []ledger.ExpenseLine
	for _, it := range s.expenses.ListByDate(ctx, date) {
		out = append(out, it.Value.Line())
	}
	return out
}

func (s *reportService) DailySummary(ctx context.Context, date string) ledger.Summary {
	var errands []ledger.ErrandLine
	for _, it := range s.errands.List(ctx) {
		errands = append(errands, it.Value.Line())
	}
	opening, ok := s.opening(ctx, date)
	return ledger.DailySummary(date, errands, s.expenseLines(ctx, date), opening, ok)
}

// CashClose counts errands run on date plus errands paid on date.
func (s *reportService) CashClose(ctx context.Context, date string) ledger.CashClose {
	var errands []ledger.ErrandLine
	for _, it := range s.errands.List(ctx) {
		if it.Value.Date == date || it.Value.PaidDate == date {
			errands = append(errands, it.Value.Line())
		}
	}
	opening, _ := s.opening(ctx, date)
	return ledger.Close(date, opening, errands, s.expenseLines(ctx, date))
}
