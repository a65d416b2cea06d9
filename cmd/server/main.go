package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	cli     struct {
		Config  string           `help:"Path to config file." default:"assets/local.yaml" env:"CONFIG_PATH" type:"path"`
		Debug   bool             `help:"Enable debug logging."`
		Version kong.VersionFlag `help:"Print version."`

		Serve        ServeCmd        `cmd:"" default:"1" help:"Start the HTTP and gRPC servers."`
		ConfirmEmail ConfirmEmailCmd `cmd:"" help:"Mark an account email address as confirmed."`
	}
)

// Globals はすべてのサブコマンドに渡される共通設定です。
type Globals struct {
	ConfigPath string
	Debug      bool
	Version    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("staffboard"),
		kong.Description("Employee records service."),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := cmd.Run(&Globals{ConfigPath: cli.Config, Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
