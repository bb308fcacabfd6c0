package cli

import (
	"errors"
	"fmt"

	"github.com/SscSPs/gl_engine/internal/platform/config"
	"github.com/SscSPs/gl_engine/pkg/database"
	"github.com/alecthomas/kong"
)

var errMigrateNeedsPostgres = errors.New("migrations need STORAGE_DRIVER=postgres")

type MigrateCmd struct {
	Down bool `help:"Roll back every applied migration instead of applying pending ones."`
}

func (cmd *MigrateCmd) Run(ctx *kong.Context, env *Env) error {
	if env.Config.StorageDriver != config.StoragePostgres {
		return errMigrateNeedsPostgres
	}

	dir := database.Up
	if cmd.Down {
		dir = database.Down
	}
	changed, err := database.RunMigrations(env.Config.DatabaseURL, env.Config.MigrationsPath, dir)
	if err != nil {
		return err
	}

	if changed {
		_, _ = fmt.Fprintf(ctx.Stdout, "migrations %s applied\n", dir)
	} else {
		_, _ = fmt.Fprintln(ctx.Stdout, "no migrations to apply")
	}
	return nil
}
