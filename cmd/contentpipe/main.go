package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/contentpipe/cmd/contentpipe/commands"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var cli commands.CLI
	parser := kong.Parse(&cli, commands.Options(ctx)...)
	err := parser.Run(&commands.Global{Out: os.Stdout}, &cli)
	stop()
	if err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
