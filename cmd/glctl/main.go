package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/gl_engine/internal/cli"
	"github.com/SscSPs/gl_engine/internal/platform/config"
	"github.com/alecthomas/kong"
)

var app struct {
	Version kong.VersionFlag `help:"Show version information"`
	cli.Commands
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "glctl: %v\n", err)
		os.Exit(1)
	}

	env := cli.NewEnv(cfg, logger)
	defer env.Close()

	ctx := kong.Parse(&app,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("glctl"),
		kong.Description("Operator tooling for the general ledger engine."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals, env),
	)

	err = ctx.Run()
	if err != nil {
		env.Close()
	}
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	if cli.Version == "" {
		cli.Version = "dev"
	}
	if cli.CommitSHA == "" {
		return cli.Version
	}
	return fmt.Sprintf("%s (%s)", cli.Version, cli.CommitSHA)
}
