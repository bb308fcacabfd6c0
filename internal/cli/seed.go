package cli

import (
	"context"
	"fmt"

	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/alecthomas/kong"
)

type SeedCmd struct {
	BaseCurrency string `help:"Base currency code. Defaults to BASE_CURRENCY." placeholder:"CODE"`
}

func (cmd *SeedCmd) Run(ctx *kong.Context, env *Env) error {
	runCtx := context.Background()
	uow, err := env.UnitOfWork(runCtx)
	if err != nil {
		return err
	}

	base := cmd.BaseCurrency
	if base == "" {
		base = env.Config.BaseCurrency
	}
	if err := services.SeedLedger(runCtx, uow, base); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(ctx.Stdout, "ledger seeded with base currency %s\n", base)
	return nil
}
