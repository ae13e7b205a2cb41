package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/hangxie/parquet-viewer/cmd"
)

var cli struct {
	View cmd.ViewCmd `cmd:"" default:"withargs" help:"Open the interactive viewer."`
	Head cmd.HeadCmd `cmd:"" help:"Print the first rows of a file."`
}

func main() {
	parser := kong.Must(
		&cli,
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Description("Interactive terminal viewer for Parquet files, for full usage see https://github.com/hangxie/parquet-viewer/blob/main/README.md"),
	)
	kongplete.Complete(parser, kongplete.WithPredictor("file", complete.PredictFiles("*")))

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run())
}
