package cli

import (
	"fmt"
	"time"

	"github.com/SscSPs/gl_engine/internal/utils"
	"github.com/alecthomas/kong"
)

type TokenCmd struct {
	Subject string        `arg:"" help:"User the token acts as."`
	TTL     time.Duration `help:"Token lifetime." default:"24h"`
}

func (cmd *TokenCmd) Run(ctx *kong.Context, env *Env) error {
	token, err := utils.IssueToken(cmd.Subject, env.Config.JWTSecret, cmd.TTL)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(ctx.Stdout, token)
	return nil
}
