package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/services"
	"github.com/dmitrijs2005/mandaditos/internal/ledger"
	"github.com/shopspring/decimal"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

const shortIDLen = 8

func shortID(r models.Record) string {
	if len(r.LocalID) <= shortIDLen {
		return r.LocalID
	}
	return r.LocalID[:shortIDLen]
}

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func syncLabel(r models.Record) string {
	switch {
	case r.NeedsUpload:
		return "new"
	case r.NeedsUpdate:
		return "edited"
	case r.SyncStatus != "":
		return string(r.SyncStatus)
	}
	return "-"
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(faintStyle).
		Headers(headers...)
}

func renderErrands(items []services.Item[models.Errand]) string {
	if len(items) == 0 {
		return faintStyle.Render("No errands yet.")
	}
	t := newTable("ID", "Date", "Time", "Client", "Description", "Total", "Method", "Owed", "Sync")
	for _, it := range items {
		e := it.Value
		t.Row(shortID(it.Record), e.Date, e.Time, e.ClientName, e.Description,
			money(e.TotalToCollect), string(e.Method), money(e.AmountOwed), syncLabel(it.Record))
	}
	return t.String()
}

func renderExpenses(items []services.Item[models.Expense]) string {
	if len(items) == 0 {
		return faintStyle.Render("No expenses yet.")
	}
	t := newTable("ID", "Date", "Category", "Amount", "Note", "Sync")
	for _, it := range items {
		x := it.Value
		t.Row(shortID(it.Record), x.Date, x.Category, money(x.Amount), x.Note, syncLabel(it.Record))
	}
	return t.String()
}

func renderOpenings(items []services.Item[models.DayOpening]) string {
	if len(items) == 0 {
		return faintStyle.Render("No day openings yet.")
	}
	t := newTable("ID", "Date", "Opening cash", "Notes", "Sync")
	for _, it := range items {
		o := it.Value
		t.Row(shortID(it.Record), o.Date, money(o.OpeningCash), o.Notes, syncLabel(it.Record))
	}
	return t.String()
}

func lines(pairs ...string) string {
	width := 0
	for i := 0; i < len(pairs); i += 2 {
		if len(pairs[i]) > width {
			width = len(pairs[i])
		}
	}
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, "%-*s  %s\n", width, pairs[i], pairs[i+1])
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSummary(s ledger.Summary) string {
	opening := money(s.Opening)
	if !s.HasOpening {
		opening += faintStyle.Render(" (no opening)")
	}

	body := lines(
		"Errands", fmt.Sprintf("%d (%d paid, %d pending)", s.Errands, s.PaidErrands, s.PendingErrands),
		"Service income paid", money(s.ServiceIncomePaid),
		"Service income pending", money(s.ServiceIncomePending),
		"Collected", money(s.CollectedPaid),
		"To collect", money(s.CollectedPending),
		"Expenses", money(s.Expenses),
		"Opening cash", opening,
		"Expected cash", titleStyle.Render(money(s.ExpectedCash)),
	)

	methods := make([]string, 0, len(s.ByMethod))
	for m := range s.ByMethod {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	var byMethod []string
	for _, m := range methods {
		t := s.ByMethod[ledger.PaymentMethod(m)]
		byMethod = append(byMethod, fmt.Sprintf("%s: %d / %s", m, t.Count, money(t.Total)))
	}

	var byHour []string
	for _, h := range s.ByHour {
		byHour = append(byHour, fmt.Sprintf("%02d:00  %d / %s", h.Hour, h.Count, money(h.Total)))
	}

	parts := []string{titleStyle.Render("Summary " + s.Date), body}
	if len(byMethod) > 0 {
		parts = append(parts, "", titleStyle.Render("By method"), strings.Join(byMethod, "\n"))
	}
	if len(byHour) > 0 {
		parts = append(parts, "", titleStyle.Render("By hour"), strings.Join(byHour, "\n"))
	}
	parts = append(parts, "", faintStyle.Render(fmt.Sprintf("Outstanding (all days): %d errands, %s owed", s.OutstandingCount, money(s.OutstandingOwed))))

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderClose(c ledger.CashClose) string {
	body := lines(
		"Opening cash", money(c.Opening),
		"- Purchases", money(c.Purchases),
		"+ Cash collected", money(c.CashCollections),
		"- Expenses", money(c.Expenses),
		"Expected in drawer", titleStyle.Render(money(c.ExpectedInDrawer)),
	)
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Cash close "+c.Date), body))
}
