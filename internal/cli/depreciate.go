package cli

import (
	"context"
	"fmt"

	"github.com/SscSPs/gl_engine/internal/utils"
	"github.com/alecthomas/kong"
)

type DepreciateCmd struct {
	Period string `arg:"" help:"Month to depreciate (YYYY-MM)."`
}

// Run posts what it can. A failing asset is reported and the rest of the
// run still commits.
func (cmd *DepreciateCmd) Run(ctx *kong.Context, env *Env, globals *Globals) error {
	runCtx := context.Background()
	svc, err := env.Services(runCtx)
	if err != nil {
		return err
	}

	results, runErr := svc.Asset.DepreciateAll(runCtx, cmd.Period, globals.User)
	if globals.JSON {
		if err := printJSON(ctx.Stdout, results); err != nil {
			return err
		}
		return runErr
	}

	for _, res := range results {
		status := "posted"
		if res.Replayed {
			status = "replayed"
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "%s %s %s net book value %s\n",
			res.Asset.AssetID, res.Asset.Name, status,
			utils.FormatWithPrecision(res.Asset.NetBookValue(), 2))
	}
	_, _ = fmt.Fprintf(ctx.Stdout, "%d assets depreciated for %s\n", len(results), cmd.Period)
	return runErr
}
