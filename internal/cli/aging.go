package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/utils"
	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"
)

type AgingCmd struct {
	Kind         string `arg:"" enum:"AR,AP" help:"Ledger side to age (AR or AP)."`
	AsOf         string `help:"Aging date (YYYY-MM-DD). Defaults to today."`
	Counterparty string `help:"Only age this counterparty."`
	Boundaries   []int  `help:"Bucket upper limits in days, e.g. 0,30,60,90. Defaults to the configured boundaries."`
}

func (cmd *AgingCmd) Run(ctx *kong.Context, env *Env, globals *Globals) error {
	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if cmd.AsOf != "" {
		var err error
		if asOf, err = parseDate("as-of", cmd.AsOf); err != nil {
			return err
		}
	}

	runCtx := context.Background()
	svc, err := env.Services(runCtx)
	if err != nil {
		return err
	}
	report, err := svc.Aging.Age(runCtx, domain.AgingQuery{
		Kind:           domain.InvoiceKind(cmd.Kind),
		CounterpartyID: cmd.Counterparty,
		AsOf:           asOf,
		Boundaries:     cmd.Boundaries,
	})
	if err != nil {
		return err
	}

	if globals.JSON {
		return printJSON(ctx.Stdout, report)
	}

	format := func(amount decimal.Decimal) string { return utils.FormatWithPrecision(amount, 2) }
	if currency, err := svc.Currency.GetCurrency(runCtx, report.CurrencyCode); err == nil {
		format = func(amount decimal.Decimal) string { return utils.FormatWithCurrencyPrecision(amount, *currency) }
	}
	return writeAgingTable(ctx.Stdout, report, format)
}

func writeAgingTable(w io.Writer, report *domain.AgingReport, format func(decimal.Decimal) string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := []string{"COUNTERPARTY"}
	for _, b := range report.Buckets {
		header = append(header, strings.ToUpper(b.Label))
	}
	header = append(header, "TOTAL")
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, cp := range report.Counterparties {
		row := []string{cp.CounterpartyID}
		for _, b := range cp.Buckets {
			row = append(row, format(b.Amount))
		}
		row = append(row, format(cp.Total))
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}

	totals := []string{"ALL"}
	for _, b := range report.Buckets {
		totals = append(totals, format(b.Amount))
	}
	totals = append(totals, format(report.Total))
	_, _ = fmt.Fprintln(tw, strings.Join(totals, "\t")+"\t")

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s aging as of %s in %s\n", report.Kind, report.AsOf.Format(dateLayout), report.CurrencyCode)
	return err
}
