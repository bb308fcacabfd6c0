package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/platform/config"
	"github.com/SscSPs/gl_engine/internal/repositories/memory"
	"github.com/SscSPs/gl_engine/internal/utils"
	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"
)

type testCLI struct {
	Commands
}

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	cfg := &config.Config{StorageDriver: config.StorageMemory, BaseCurrency: "AED", RateCacheTTL: time.Minute, JWTSecret: "cli-test-secret-that-is-long-enough"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEnvWithStore(cfg, memory.NewStore(), logger)
}

// run parses args against a fresh command tree bound to env and returns
// everything written to stdout.
func run(t *testing.T, env *Env, args ...string) (string, error) {
	t.Helper()
	var c testCLI
	var out bytes.Buffer
	parser, err := kong.New(&c,
		kong.Name("glctl"),
		kong.Writers(&out, &out),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
		kong.Bind(&c.Globals, env),
	)
	assert.NoError(t, err)
	kctx, err := parser.Parse(args)
	assert.NoError(t, err)
	err = kctx.Run()
	return out.String(), err
}

func postInvoice(t *testing.T, env *Env) {
	t.Helper()
	ctx := context.Background()
	svc, err := env.Services(ctx)
	assert.NoError(t, err)
	inv, err := svc.Invoice.CreateInvoice(ctx, domain.KindAR, dto.CreateInvoiceRequest{
		Number:         "INV-CLI-1",
		CounterpartyID: "cust-1",
		CurrencyCode:   "AED",
		IssueDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DueDate:        time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.RequireFromString("1000"),
		TaxRate:        decimal.RequireFromString("0.05"),
	}, "clerk")
	assert.NoError(t, err)
	_, err = svc.Ledger.PostInvoice(ctx, domain.KindAR, inv.InvoiceID, "clerk")
	assert.NoError(t, err)
}

func TestSeedCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "seed")
	assert.NoError(t, err)
	assert.Equal(t, "ledger seeded with base currency AED\n", out)

	svc, err := env.Services(context.Background())
	assert.NoError(t, err)
	roles, err := svc.ChartOfAccounts.ListRoles(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, len(domain.AllRoles()), len(roles))

	// Seeding twice keeps the existing rows.
	_, err = run(t, env, "seed")
	assert.NoError(t, err)
}

func TestMigrateCmd_RequiresPostgres(t *testing.T) {
	env := newTestEnv(t)
	_, err := run(t, env, "migrate")
	assert.IsError(t, err, errMigrateNeedsPostgres)
}

func TestAgingCmd(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, services.SeedLedger(context.Background(), env.uow, "AED"))
	postInvoice(t, env)

	t.Run("Table", func(t *testing.T) {
		out, err := run(t, env, "aging", "AR", "--as-of", "2024-03-15")
		assert.NoError(t, err)
		assert.Contains(t, out, "31-60")
		assert.Contains(t, out, "cust-1")
		assert.Contains(t, out, "1050.00")
		assert.Contains(t, out, "AR aging as of 2024-03-15 in AED")
	})

	t.Run("JSON", func(t *testing.T) {
		out, err := run(t, env, "--json", "aging", "AR", "--as-of", "2024-03-15", "--boundaries", "0,60")
		assert.NoError(t, err)
		var report domain.AgingReport
		assert.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, 3, len(report.Buckets))
		assert.Equal(t, "1-60", report.Buckets[1].Label)
		assert.Equal(t, "1050", report.Buckets[1].Amount.String())
	})

	t.Run("PayablesEmpty", func(t *testing.T) {
		out, err := run(t, env, "aging", "AP", "--as-of", "2024-03-15")
		assert.NoError(t, err)
		assert.NotContains(t, out, "cust-1")
	})

	t.Run("BadDate", func(t *testing.T) {
		_, err := run(t, env, "aging", "AR", "--as-of", "15/03/2024")
		assert.EqualError(t, err, `invalid --as-of "15/03/2024", expected YYYY-MM-DD`)
	})
}

func TestAccrueTaxCmd(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, services.SeedLedger(context.Background(), env.uow, "AED"))
	postInvoice(t, env)

	out, err := run(t, env, "accrue-tax", "--period-start", "2024-01-01", "--period-end", "2024-01-31")
	assert.NoError(t, err)
	assert.Contains(t, out, "ACCRUED")
	assert.Contains(t, out, "taxable 1000.00")
	assert.Contains(t, out, "tax 90.00")

	_, err = run(t, env, "accrue-tax", "--period-start", "2024-02-01", "--period-end", "2024-02-29", "--rate", "nine")
	assert.Error(t, err)
}

func TestDepreciateCmd(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, services.SeedLedger(context.Background(), env.uow, "AED"))

	out, err := run(t, env, "depreciate", "2024-01")
	assert.NoError(t, err)
	assert.Equal(t, "0 assets depreciated for 2024-01\n", out)

	_, err = run(t, env, "depreciate", "2024-13")
	assert.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	env := newTestEnv(t)
	out, err := run(t, env, "token", "controller-1", "--ttl", "1h")
	assert.NoError(t, err)

	claims, err := utils.ParseToken(strings.TrimSpace(out), env.Config.JWTSecret)
	assert.NoError(t, err)
	assert.Equal(t, "controller-1", claims.Subject)
}
