package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mandaditos/internal/client/config"
	"github.com/dmitrijs2005/mandaditos/internal/client/connectivity"
	"github.com/dmitrijs2005/mandaditos/internal/client/localstore"
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
	"github.com/dmitrijs2005/mandaditos/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote keeps documents per kind in memory.
type fakeRemote struct {
	mu       sync.Mutex
	seq      int
	docs     map[models.Kind]map[string]remote.Document
	loginErr error
	creds    remote.Credentials
	exported []models.Kind
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{docs: map[models.Kind]map[string]remote.Document{}}
}

func (f *fakeRemote) bucket(k models.Kind) map[string]remote.Document {
	if f.docs[k] == nil {
		f.docs[k] = map[string]remote.Document{}
	}
	return f.docs[k]
}

func (f *fakeRemote) Create(_ context.Context, k models.Kind, originID string, p models.Payload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bucket(k)
	for id, d := range b {
		if d.OriginID == originID {
			d.Payload = p.Clone()
			b[id] = d
			return id, nil
		}
	}
	f.seq++
	id := fmt.Sprintf("r%d", f.seq)
	b[id] = remote.Document{RemoteID: id, OriginID: originID, Payload: p.Clone()}
	return id, nil
}

func (f *fakeRemote) Update(_ context.Context, k models.Kind, id string, p models.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bucket(k)
	d, ok := b[id]
	if !ok {
		return remote.ErrNotFound
	}
	d.Payload = p.Clone()
	b[id] = d
	return nil
}

func (f *fakeRemote) List(_ context.Context, k models.Kind, flt remote.Filter) ([]remote.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []remote.Document
	for _, d := range f.bucket(k) {
		if !flt.IsZero() && fmt.Sprint(d.Payload[flt.Field]) != flt.Value {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRemote) Delete(_ context.Context, k models.Kind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bucket(k), id)
	return nil
}

func (f *fakeRemote) Ping(context.Context) error { return nil }

func (f *fakeRemote) Login(_ context.Context, c remote.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = c
	return f.loginErr
}

func (f *fakeRemote) Export(_ context.Context, k models.Kind) (string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported = append(f.exported, k)
	return "backups/" + string(k) + ".json", len(f.bucket(k)), nil
}

func (f *fakeRemote) Close() error { return nil }

func (f *fakeRemote) count(k models.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bucket(k))
}

func newTestApp(t *testing.T, rem *fakeRemote, input string) (*App, *[]string) {
	t.Helper()
	out := capturePrint(t)

	cfg := &config.Config{DeviceName: "phone", SyncTimeout: time.Second}
	clock := timex.FixedClock{T: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)}
	a := newApp(cfg, logging.NewNop(), rem, localstore.NewMemoryStorage(), clock)
	a.reader = rdr(input)
	a.out = &bytes.Buffer{}
	t.Cleanup(func() {
		for _, e := range a.engines {
			e.Close()
		}
	})
	return a, out
}

func (a *App) waitIdle() {
	for _, e := range a.engines {
		e.Wait()
	}
}

func TestApp_AddListAndSync(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	a, out := newTestApp(t, rem, strings.Join([]string{
		"Ana", "Groceries", "50", "20", "", "cash", "", "",
	}, "\n")+"\n")

	require.NoError(t, a.Add(ctx, "errand"))
	a.waitIdle()

	items := a.errands.List(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "70", items[0].Value.TotalToCollect.String())
	assert.Equal(t, "2024-05-01", items[0].Value.Date)
	assert.Equal(t, 1, rem.count(models.KindErrand))

	require.NoError(t, a.List(ctx, "e"))
	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "$70.00")
	assert.Contains(t, joined, "Groceries")

	require.NoError(t, a.Sync(ctx))
	assert.Contains(t, strings.Join(*out, "\n"), "pulled")
}

func TestApp_AddValidationError(t *testing.T) {
	rem := newFakeRemote()
	a, out := newTestApp(t, rem, "food\nabc\n\n\n\n")

	err := a.Add(context.Background(), "x")
	require.Error(t, err)

	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, strings.Join(*out, "\n"), "Invalid input")
	assert.Empty(t, a.expenses.List(context.Background()))
}

func TestApp_EditKeepsEmptyAnswers(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, newFakeRemote(), "")

	it, err := a.errands.Create(ctx, models.ErrandInput{Description: "Pharmacy", PurchaseCost: "10", ServiceFee: "5"})
	require.NoError(t, err)

	a.reader = rdr("\n\n\n8\n\n\n\n\n")
	require.NoError(t, a.Edit(ctx, "e", it.Record.LocalID[:6]))

	got, ok := a.errands.Get(ctx, it.Record.LocalID)
	require.True(t, ok)
	assert.Equal(t, "Pharmacy", got.Value.Description)
	assert.Equal(t, "18", got.Value.TotalToCollect.String())
}

func TestApp_PayDefaultsToCash(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t, newFakeRemote(), "")

	it, err := a.errands.Create(ctx, models.ErrandInput{Description: "Bakery", PurchaseCost: "30", ServiceFee: "10"})
	require.NoError(t, err)

	require.NoError(t, a.Pay(ctx, it.Record.LocalID, ""))

	got, _ := a.errands.Get(ctx, it.Record.LocalID)
	assert.True(t, got.Value.Paid)
	assert.Equal(t, "cash", string(got.Value.Method))
	assert.Equal(t, "2024-05-01", got.Value.PaidDate)
	assert.Contains(t, strings.Join(*out, "\n"), "Paid $40.00 by cash")
}

func TestApp_RemoveUnknownID(t *testing.T) {
	a, out := newTestApp(t, newFakeRemote(), "")

	err := a.Remove(context.Background(), "x", "nope")
	require.Error(t, err)
	assert.Contains(t, strings.Join(*out, "\n"), "Not found.")
}

func TestApp_RemoveDeletesRemoteCopy(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	a, _ := newTestApp(t, rem, "")

	it, err := a.expenses.Create(ctx, models.ExpenseInput{Category: "fuel", Amount: "12"})
	require.NoError(t, err)
	a.waitIdle()
	require.Equal(t, 1, rem.count(models.KindExpense))

	require.NoError(t, a.Remove(ctx, "x", it.Record.LocalID))
	a.waitIdle()
	assert.Empty(t, a.expenses.List(ctx))
	assert.Equal(t, 0, rem.count(models.KindExpense))
}

func TestResolve(t *testing.T) {
	recs := []models.Record{
		{LocalID: "abc111", OriginID: "o1"},
		{LocalID: "abc222", RemoteID: "r2"},
	}

	id, err := resolve("abc1", recs)
	require.NoError(t, err)
	assert.Equal(t, "abc111", id)

	id, err = resolve("r2", recs)
	require.NoError(t, err)
	assert.Equal(t, "abc222", id)

	_, err = resolve("abc", recs)
	assert.ErrorIs(t, err, errAmbiguousID)

	_, err = resolve("zzz", recs)
	assert.Error(t, err)
}

func TestApp_SummaryAndClose(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t, newFakeRemote(), "")

	_, err := a.openings.Create(ctx, models.DayOpeningInput{OpeningCash: "100"})
	require.NoError(t, err)
	_, err = a.errands.Create(ctx, models.ErrandInput{Description: "a", PurchaseCost: "50", ServiceFee: "20", Method: "cash"})
	require.NoError(t, err)

	require.NoError(t, a.Summary(ctx, ""))
	require.NoError(t, a.CashClose(ctx, "2024-05-01"))

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Summary 2024-05-01")
	assert.Contains(t, joined, "$120.00")
	assert.Contains(t, joined, "Cash close 2024-05-01")

	err = a.Summary(ctx, "yesterday")
	assert.Error(t, err)
}

func TestApp_OpeningPullsMissingDate(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	_, err := rem.Create(ctx, models.KindDayOpening, "other-device", models.Payload{
		models.FieldDate:        "2024-04-30",
		models.FieldOpeningCash: "250",
	})
	require.NoError(t, err)

	a, out := newTestApp(t, rem, "")
	require.NoError(t, a.Opening(ctx, "2024-04-30"))
	assert.Contains(t, strings.Join(*out, "\n"), "$250.00")

	require.NoError(t, a.Opening(ctx, "2024-04-29"))
	assert.Contains(t, strings.Join(*out, "\n"), "No opening for 2024-04-29")
}

func TestApp_LoginRejectedDisablesSync(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	rem.loginErr = remote.ErrUnauthorized
	a, out := newTestApp(t, rem, "")

	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("bad"), nil }
	t.Cleanup(func() { readPassword = orig })

	require.Error(t, a.Login(ctx))
	assert.Equal(t, connectivity.ModeDisabled, a.watcher.Mode())
	assert.Contains(t, strings.Join(*out, "\n"), "Access denied")

	rem.mu.Lock()
	rem.loginErr = nil
	rem.mu.Unlock()

	require.NoError(t, a.Login(ctx))
	assert.Equal(t, connectivity.ModeOnline, a.watcher.Mode())
	assert.Equal(t, remote.Credentials{Device: "phone", AccessKey: "bad"}, rem.creds)
}

func TestApp_Backup(t *testing.T) {
	rem := newFakeRemote()
	a, out := newTestApp(t, rem, "")

	require.NoError(t, a.Backup(context.Background(), "gastos"))
	assert.Equal(t, []models.Kind{models.KindExpense}, rem.exported)
	assert.Contains(t, strings.Join(*out, "\n"), "backups/expenses.json")
}
