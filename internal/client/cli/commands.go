package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mandaditos/internal/client/connectivity"
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
	"github.com/dmitrijs2005/mandaditos/internal/client/services"
	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/timex"
)

var errAmbiguousID = errors.New("ambiguous id")

// fail prints a user-facing message for err and returns it unchanged.
func (a *App) fail(ctx context.Context, what string, err error) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		printlnFn("Invalid input:", verr.Error())
	case errors.Is(err, common.ErrorNotFound):
		printlnFn("Not found.")
	case errors.Is(err, errAmbiguousID):
		printlnFn("Id matches more than one record, type more characters.")
	case errors.Is(err, remote.ErrUnauthorized):
		printlnFn("Access denied, check the access key.")
	case errors.Is(err, remote.ErrUnavailable):
		printlnFn("Server unavailable, try again later.")
	default:
		printlnFn(fmt.Sprintf("Error %s: %v", what, err))
	}
	a.logger.Debug(ctx, "command failed", "command", what, "error", err)
	return err
}

func (a *App) date(s string) (string, error) {
	if s == "" {
		return timex.Today(a.clock), nil
	}
	if !timex.ValidDate(s) {
		return "", &models.ValidationError{Field: models.FieldDate, Message: "must be YYYY-MM-DD"}
	}
	return s, nil
}

// resolve expands an id prefix, as printed by list, into the full local id.
func resolve(prefix string, records []models.Record) (string, error) {
	found := ""
	for _, r := range records {
		if r.LocalID == prefix || r.OriginID == prefix || r.RemoteID == prefix {
			return r.LocalID, nil
		}
		if strings.HasPrefix(r.LocalID, prefix) {
			if found != "" {
				return "", errAmbiguousID
			}
			found = r.LocalID
		}
	}
	if found == "" {
		return "", fmt.Errorf("%s: %w", prefix, common.ErrorNotFound)
	}
	return found, nil
}

func (a *App) records(ctx context.Context, kind models.Kind) []models.Record {
	var out []models.Record
	switch kind {
	case models.KindErrand:
		for _, it := range a.errands.List(ctx) {
			out = append(out, it.Record)
		}
	case models.KindExpense:
		for _, it := range a.expenses.List(ctx) {
			out = append(out, it.Record)
		}
	case models.KindDayOpening:
		for _, it := range a.openings.List(ctx) {
			out = append(out, it.Record)
		}
	}
	return out
}

func (a *App) Login(ctx context.Context) error {
	key, err := GetSecret(a.out, "Access key")
	if err != nil {
		return a.fail(ctx, "reading access key", err)
	}
	defer wipe(key)
	if err := a.loginWith(ctx, key); err != nil {
		return a.fail(ctx, "logging in", err)
	}
	printlnFn("Login successful")
	return nil
}

// loginWith authenticates the device. Rejected credentials switch the
// watcher to disabled so the client stops retrying in the background.
func (a *App) loginWith(ctx context.Context, key []byte) error {
	err := a.auth.Login(ctx, a.config.DeviceName, key)
	if err != nil {
		if errors.Is(err, remote.ErrUnauthorized) {
			a.watcher.SetMode(ctx, connectivity.ModeDisabled)
		}
		a.logger.Warn(ctx, "login failed", "error", err)
		return err
	}
	a.loggedIn = true
	if a.watcher.Mode() == connectivity.ModeDisabled {
		a.watcher.SetMode(ctx, connectivity.ModeOffline)
	}
	a.watcher.Check(ctx)
	a.triggerAll()
	return nil
}

func (a *App) List(ctx context.Context, kind string) error {
	k, err := parseKind(kind)
	if err != nil {
		return a.fail(ctx, "listing", err)
	}
	switch k {
	case models.KindErrand:
		printlnFn(renderErrands(a.errands.List(ctx)))
	case models.KindExpense:
		printlnFn(renderExpenses(a.expenses.List(ctx)))
	case models.KindDayOpening:
		printlnFn(renderOpenings(a.openings.List(ctx)))
	}
	return nil
}

func errandFields(in *models.ErrandInput, cur models.Errand) []field {
	var fee, cost, qty string
	if !cur.ServiceFee.IsZero() || cur.Description != "" {
		fee, cost, qty = cur.ServiceFee.String(), cur.PurchaseCost.String(), fmt.Sprint(cur.Quantity)
	}
	return []field{
		{label: "Client", current: cur.ClientName, dst: &in.ClientName},
		{label: "Description", current: cur.Description, dst: &in.Description},
		{label: "Purchase cost", current: cost, dst: &in.PurchaseCost},
		{label: "Service fee", current: fee, dst: &in.ServiceFee},
		{label: "Quantity", current: qty, dst: &in.Quantity},
		{label: "Payment (cash, transfer, pending)", current: string(cur.Method), dst: &in.Method},
		{label: "Date (YYYY-MM-DD)", current: cur.Date, dst: &in.Date},
		{label: "Time (HH:MM)", current: cur.Time, dst: &in.Time},
	}
}

func expenseFields(in *models.ExpenseInput, cur models.Expense) []field {
	var amount string
	if !cur.Amount.IsZero() {
		amount = cur.Amount.String()
	}
	return []field{
		{label: "Category", current: cur.Category, dst: &in.Category},
		{label: "Amount", current: amount, dst: &in.Amount},
		{label: "Note", current: cur.Note, dst: &in.Note},
		{label: "Date (YYYY-MM-DD)", current: cur.Date, dst: &in.Date},
		{label: "Time (HH:MM)", current: cur.Time, dst: &in.Time},
	}
}

func openingFields(in *models.DayOpeningInput, cur models.DayOpening) []field {
	var cash string
	if cur.Date != "" {
		cash = cur.OpeningCash.String()
	}
	return []field{
		{label: "Date (YYYY-MM-DD)", current: cur.Date, dst: &in.Date},
		{label: "Opening cash", current: cash, dst: &in.OpeningCash},
		{label: "Notes", current: cur.Notes, dst: &in.Notes},
	}
}

func (a *App) Add(ctx context.Context, kind string) error {
	k, err := parseKind(kind)
	if err != nil {
		return a.fail(ctx, "adding", err)
	}

	var rec models.Record
	switch k {
	case models.KindErrand:
		var in models.ErrandInput
		if err := ask(a.reader, a.out, errandFields(&in, models.Errand{})); err != nil {
			return a.fail(ctx, "reading input", err)
		}
		it, err := a.errands.Create(ctx, in)
		if err != nil {
			return a.fail(ctx, "adding errand", err)
		}
		rec = it.Record
		printlnFn("Total to collect:", money(it.Value.TotalToCollect))
	case models.KindExpense:
		var in models.ExpenseInput
		if err := ask(a.reader, a.out, expenseFields(&in, models.Expense{})); err != nil {
			return a.fail(ctx, "reading input", err)
		}
		it, err := a.expenses.Create(ctx, in)
		if err != nil {
			return a.fail(ctx, "adding expense", err)
		}
		rec = it.Record
	case models.KindDayOpening:
		var in models.DayOpeningInput
		if err := ask(a.reader, a.out, openingFields(&in, models.DayOpening{})); err != nil {
			return a.fail(ctx, "reading input", err)
		}
		it, err := a.openings.Create(ctx, in)
		if err != nil {
			return a.fail(ctx, "adding opening", err)
		}
		rec = it.Record
	}

	printlnFn(fmt.Sprintf("Saved %s %s", k, shortID(rec)))
	return nil
}

func (a *App) Edit(ctx context.Context, kind, id string) error {
	k, err := parseKind(kind)
	if err != nil {
		return a.fail(ctx, "editing", err)
	}
	id, err = resolve(id, a.records(ctx, k))
	if err != nil {
		return a.fail(ctx, "editing", err)
	}

	switch k {
	case models.KindErrand:
		cur, _ := a.errands.Get(ctx, id)
		var in models.ErrandInput
		if err := ask(a.reader, a.out, errandFields(&in, cur.Value)); err != nil {
			return a.fail(ctx, "reading input", err)
		}
		if _, err := a.errands.Update(ctx, id, in); err != nil {
			return a.fail(ctx, "updating errand", err)
		}
	case models.KindExpense:
		cur, _ := a.expenses.Get(ctx, id)
		var in models.ExpenseInput
		if err := ask(a.reader, a.out, expenseFields(&in, cur.Value)); err != nil {
			return a.fail(ctx, "reading input", err)
		}
		if _, err := a.expenses.Update(ctx, id, in); err != nil {
			return a.fail(ctx, "updating expense", err)
		}
	case models.KindDayOpening:
		cur, _ := a.openings.Get(ctx, id)
		var in models.DayOpeningInput
		if err := ask(a.reader, a.out, openingFields(&in, cur.Value)); err != nil {
			return a.fail(ctx, "reading input", err)
		}
		if _, err := a.openings.Update(ctx, id, in); err != nil {
			return a.fail(ctx, "updating opening", err)
		}
	}

	printlnFn("Updated.")
	return nil
}

func (a *App) Pay(ctx context.Context, id, method string) error {
	id, err := resolve(id, a.records(ctx, models.KindErrand))
	if err != nil {
		return a.fail(ctx, "paying", err)
	}
	if method == "" {
		method = "cash"
	}
	it, err := a.errands.MarkPaid(ctx, id, method, "")
	if err != nil {
		return a.fail(ctx, "paying", err)
	}
	printlnFn(fmt.Sprintf("Paid %s by %s on %s %s", money(it.Value.TotalToCollect), it.Value.Method, it.Value.PaidDate, it.Value.PaidTime))
	return nil
}

func (a *App) Remove(ctx context.Context, kind, id string) error {
	k, err := parseKind(kind)
	if err != nil {
		return a.fail(ctx, "deleting", err)
	}
	id, err = resolve(id, a.records(ctx, k))
	if err != nil {
		return a.fail(ctx, "deleting", err)
	}

	switch k {
	case models.KindErrand:
		err = a.errands.Delete(ctx, id)
	case models.KindExpense:
		err = a.expenses.Delete(ctx, id)
	case models.KindDayOpening:
		err = a.openings.Delete(ctx, id)
	}
	if err != nil {
		return a.fail(ctx, "deleting", err)
	}
	printlnFn("Deleted.")
	return nil
}

func (a *App) Summary(ctx context.Context, date string) error {
	d, err := a.date(date)
	if err != nil {
		return a.fail(ctx, "summary", err)
	}
	printlnFn(renderSummary(a.reports.DailySummary(ctx, d)))
	return nil
}

func (a *App) CashClose(ctx context.Context, date string) error {
	d, err := a.date(date)
	if err != nil {
		return a.fail(ctx, "cash close", err)
	}
	printlnFn(renderClose(a.reports.CashClose(ctx, d)))
	return nil
}

// Opening shows the day opening for date. When none is stored locally it
// pulls that date from the server first.
func (a *App) Opening(ctx context.Context, date string) error {
	d, err := a.date(date)
	if err != nil {
		return a.fail(ctx, "opening", err)
	}

	it, ok := a.openings.ByDate(ctx, d)
	if !ok {
		if _, err := a.openings.Refresh(ctx, d); err != nil {
			a.logger.Warn(ctx, "opening refresh failed", "date", d, "error", err)
		}
		it, ok = a.openings.ByDate(ctx, d)
	}
	if !ok {
		printlnFn(fmt.Sprintf("No opening for %s. Use 'add opening' to record one.", d))
		return nil
	}
	printlnFn(renderOpenings([]services.Item[models.DayOpening]{it}))
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	for _, k := range models.Kinds {
		e, ok := a.engines[k]
		if !ok {
			continue
		}
		res, err := e.FullSync(ctx)
		if err != nil {
			return a.fail(ctx, "syncing", err)
		}
		pulled := "pulled"
		if !res.Pulled {
			pulled = "not pulled"
		}
		printlnFn(fmt.Sprintf("%-13s created %d (%d failed), updated %d (%d failed), %s, %d records",
			k, res.Created, res.CreateFailed, res.Updated, res.UpdateFailed, pulled, len(res.Records)))
	}
	return nil
}

func (a *App) Backup(ctx context.Context, kind string) error {
	k, err := parseKind(kind)
	if err != nil {
		return a.fail(ctx, "backup", err)
	}
	key, n, err := a.auth.Backup(ctx, k)
	if err != nil {
		return a.fail(ctx, "backup", err)
	}
	printlnFn(fmt.Sprintf("Exported %d %s to %s", n, k, key))
	return nil
}
