// Package cli implements glctl, the operator command line for the ledger.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/platform/config"
	"github.com/SscSPs/gl_engine/internal/platform/storage"
)

var (
	Version   = ""
	CommitSHA = ""
)

const dateLayout = "2006-01-02"

// Globals defines global flags available to all commands.
type Globals struct {
	User string `help:"User recorded as the author of posted entries." default:"glctl" env:"GLCTL_USER"`
	JSON bool   `help:"Print results as JSON."`
}

type Commands struct {
	Globals

	Migrate    MigrateCmd    `cmd:"" help:"Apply or roll back database migrations."`
	Seed       SeedCmd       `cmd:"" help:"Install the base currency, default chart of accounts and settings."`
	AccrueTax  AccrueTaxCmd  `cmd:"" name:"accrue-tax" help:"Accrue corporate tax for a period."`
	Depreciate DepreciateCmd `cmd:"" help:"Post one month of depreciation for every active asset."`
	Aging      AgingCmd      `cmd:"" help:"Print an AR or AP aging report."`
	Token      TokenCmd      `cmd:"" help:"Issue a bearer token for the HTTP API."`
}

// Env opens storage on first use so commands that never touch the ledger
// do not need a database.
type Env struct {
	Config *config.Config
	Logger *slog.Logger

	uow       portsrepo.UnitOfWork
	container *portssvc.ServiceContainer
	closeFn   func()
}

// NewEnv returns an Env that opens storage from cfg.
func NewEnv(cfg *config.Config, logger *slog.Logger) *Env {
	return &Env{Config: cfg, Logger: logger}
}

// NewEnvWithStore returns an Env over an already open unit of work.
func NewEnvWithStore(cfg *config.Config, uow portsrepo.UnitOfWork, logger *slog.Logger) *Env {
	return &Env{Config: cfg, Logger: logger, uow: uow}
}

// UnitOfWork returns the opened store.
func (e *Env) UnitOfWork(ctx context.Context) (portsrepo.UnitOfWork, error) {
	if e.uow != nil {
		return e.uow, nil
	}
	uow, closeFn, err := storage.Open(ctx, e.Config, storage.Options{}, e.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	e.uow, e.closeFn = uow, closeFn
	return uow, nil
}

// Services returns the service container. The CLI runs without Redis; each
// invocation is short lived so the in-process rate cache is enough.
func (e *Env) Services(ctx context.Context) (*portssvc.ServiceContainer, error) {
	if e.container != nil {
		return e.container, nil
	}
	uow, err := e.UnitOfWork(ctx)
	if err != nil {
		return nil, err
	}
	e.container = services.NewServiceContainer(uow, nil, services.NewRateCache(nil, e.Config.RateCacheTTL, nil))
	return e.container, nil
}

// Close releases the store if this Env opened it.
func (e *Env) Close() {
	if e.closeFn != nil {
		e.closeFn()
		e.closeFn = nil
	}
}

func parseDate(name, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q, expected YYYY-MM-DD", name, value)
	}
	return t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
