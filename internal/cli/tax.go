package cli

import (
	"context"
	"fmt"

	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/utils"
	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"
)

type AccrueTaxCmd struct {
	PeriodStart string `help:"First day of the period (YYYY-MM-DD)." required:""`
	PeriodEnd   string `help:"Last day of the period (YYYY-MM-DD)." required:""`
	Rate        string `help:"Override the configured corporate tax rate, e.g. 0.09."`
}

func (cmd *AccrueTaxCmd) Run(ctx *kong.Context, env *Env, globals *Globals) error {
	start, err := parseDate("period-start", cmd.PeriodStart)
	if err != nil {
		return err
	}
	end, err := parseDate("period-end", cmd.PeriodEnd)
	if err != nil {
		return err
	}
	req := dto.TaxAccrualRequest{PeriodStart: start, PeriodEnd: end}
	if cmd.Rate != "" {
		rate, err := decimal.NewFromString(cmd.Rate)
		if err != nil {
			return fmt.Errorf("invalid --rate %q: %w", cmd.Rate, err)
		}
		req.Rate = &rate
	}

	runCtx := context.Background()
	svc, err := env.Services(runCtx)
	if err != nil {
		return err
	}
	filing, err := svc.Tax.Accrue(runCtx, req, globals.User)
	if err != nil {
		return err
	}

	if globals.JSON {
		return printJSON(ctx.Stdout, filing)
	}
	entry := "none"
	if filing.JournalEntryID != nil {
		entry = *filing.JournalEntryID
	}
	_, _ = fmt.Fprintf(ctx.Stdout, "filing %s %s taxable %s tax %s entry %s\n",
		filing.FilingID, filing.Status,
		utils.FormatWithPrecision(filing.TaxableIncome, 2),
		utils.FormatWithPrecision(filing.TaxAmount, 2),
		entry)
	return nil
}
