package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	factlog "github.com/vilterp/factlog/pkg"
	"github.com/vilterp/factlog/pkg/config"
	clog "github.com/vilterp/factlog/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:          "factlog-server",
		Short:        "Serve factlog sessions over websockets",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := config.New()
			v.SetDefault("log_level", "info")
			cfg, err := config.Load(v, configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := clog.Init(cfg.LogLevel); err != nil {
				return err
			}
			defer clog.Sync()

			fmt.Println("factlog server")

			// graceful shutdown on Ctrl-C
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return factlog.NewServer(cfg).Run(ctx)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "TOML config file")
	flags.String("listen", "0.0.0.0:9000", "host:port to listen on")
	flags.Bool("strict-lexing", false, "reject unrecognized characters instead of dropping them")
	flags.Bool("strict-arity", false, "reject facts whose arity differs from earlier facts of the same name")
	flags.String("log-level", "info", "log level")
	return cmd
}
