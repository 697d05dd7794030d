package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"lectio/internal/daemon"
	"lectio/internal/devotion"
	"lectio/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lectio daemon and HTTP API in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx, strings.TrimSpace(bind))
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override the API bind address (host:port)")
	return cmd
}

func runServe(cmd *cobra.Command, ctx *commandContext, bind string) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if bind != "" {
		cfg.Paths.APIBind = bind
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	svc, err := devotion.Open(cfg, logger)
	if err != nil {
		logger.Error("open devotion service", logging.Error(err))
		return err
	}
	defer svc.Close()

	d, err := daemon.New(cfg, svc, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return err
	}
	defer d.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "lectio serving on http://%s\n", d.Address())
	<-signalCtx.Done()
	logger.Info("lectio shutting down")
	return nil
}
