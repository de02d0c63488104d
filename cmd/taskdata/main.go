package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskdata/config"
	"taskdata/pkg/ingest"
	"taskdata/pkg/logging"
	"taskdata/pkg/metrics"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg     config.AppConfig
	log     *zap.Logger
	metrics *metrics.Metrics
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.Load()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.AppConfig) *cobra.Command {
	a := &app{cfg: cfg, log: zap.NewNop()}
	root := &cobra.Command{
		Use:          "taskdata",
		Short:        "Decode ISO 11783 TaskData folders",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logging.New(a.cfg.LogLevel, a.cfg.Environment)
			if err != nil {
				return err
			}
			a.log = log
			a.metrics = metrics.New()
			a.cfg.Log(log)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	pf.IntVar(&a.cfg.Workers, "workers", cfg.Workers, "concurrent log decoders per folder")

	root.AddCommand(
		newExtractCmd(a),
		newExportCmd(a),
		newReportCmd(a),
		newLoadCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) ingestOptions(skipLogs bool) ingest.Options {
	return ingest.Options{
		Workers:  a.cfg.Workers,
		Epoch:    a.cfg.Epoch,
		Logger:   a.log,
		Metrics:  a.metrics,
		Backend:  a.cfg.Backend(),
		SkipLogs: skipLogs,
	}
}
