package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/mandaditos/internal/client/config"
	"github.com/dmitrijs2005/mandaditos/internal/client/connectivity"
	"github.com/dmitrijs2005/mandaditos/internal/client/localstore"
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
	"github.com/dmitrijs2005/mandaditos/internal/client/services"
	"github.com/dmitrijs2005/mandaditos/internal/client/syncer"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
	"github.com/dmitrijs2005/mandaditos/internal/timex"
)

type App struct {
	config *config.Config
	logger logging.Logger
	clock  timex.Clock

	auth     services.AuthService
	errands  services.ErrandService
	expenses services.ExpenseService
	openings services.DayOpeningService
	reports  services.ReportService

	engines map[models.Kind]*syncer.Engine
	watcher *connectivity.Watcher
	db      *sql.DB

	loggedIn bool
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the local database, builds the transport selected in c and
// wires one store, sync engine and service per kind.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := localstore.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	client, err := newRemoteClient(c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, logger, client, localstore.NewSQLiteStorage(db), timex.SystemClock{})
	a.db = db
	return a, nil
}

// newApp wires everything that does not touch the filesystem.
func newApp(c *config.Config, logger logging.Logger, client remote.Client, storage localstore.Storage, clock timex.Clock) *App {
	deps := services.Deps{Remote: client, Logger: logger, Clock: clock, Timeout: c.SyncTimeout}

	a := &App{
		config:  c,
		logger:  logger,
		clock:   clock,
		auth:    services.NewAuthService(client),
		engines: make(map[models.Kind]*syncer.Engine, len(models.Kinds)),
		watcher: connectivity.NewWatcher(client, logger),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	stores := make(map[models.Kind]*localstore.Store, len(models.Kinds))
	for _, k := range models.Kinds {
		stores[k] = localstore.NewStore(k, storage, logger)
		a.engines[k] = syncer.New(stores[k], client, logger, c.SyncTimeout)
	}

	a.errands = services.NewErrandService(stores[models.KindErrand], a.engines[models.KindErrand], deps)
	a.expenses = services.NewExpenseService(stores[models.KindExpense], a.engines[models.KindExpense], deps)
	a.openings = services.NewDayOpeningService(stores[models.KindDayOpening], a.engines[models.KindDayOpening], deps)
	a.reports = services.NewReportService(a.errands, a.expenses, a.openings)

	a.watcher.OnOnline(a.triggerAll)
	return a
}

func newRemoteClient(c *config.Config) (remote.Client, error) {
	creds := remote.Credentials{Device: c.DeviceName, AccessKey: c.AccessKey}
	switch c.Transport {
	case config.TransportHTTP:
		return remote.NewHTTPClient(c.ServerURL, creds), nil
	default:
		return remote.NewGRPCClient(c.ServerEndpointAddr, creds)
	}
}

func (a *App) triggerAll() {
	for _, k := range models.Kinds {
		if e, ok := a.engines[k]; ok {
			e.Trigger()
		}
	}
}

func (a *App) syncing() bool {
	for _, e := range a.engines {
		if e.Syncing() {
			return true
		}
	}
	return false
}

func (a *App) getStatus() string {
	s := a.config.DeviceName
	if a.watcher != nil {
		s += " " + string(a.watcher.Mode())
	}
	if a.syncing() {
		s += " syncing"
	}
	return fmt.Sprintf("(%s)", s)
}

// Run starts the watcher and the initial sync, then serves the REPL until
// the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer a.shutdown(ctx)
	defer cancel()

	printlnFn("Welcome to Mandaditos (type 'help' for commands)")

	if a.config.AccessKey != "" {
		_ = a.loginWith(ctx, []byte(a.config.AccessKey))
	}

	go a.watcher.Run(ctx, a.config.OnlineCheckInterval)
	for _, k := range models.Kinds {
		a.engines[k].Start()
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) shutdown(ctx context.Context) {
	for _, e := range a.engines {
		e.Close()
	}
	if err := a.auth.Close(ctx); err != nil {
		a.logger.Warn(ctx, "failed to close remote client", "error", err)
	}
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn(ctx, "failed to close database", "error", err)
	}
}
