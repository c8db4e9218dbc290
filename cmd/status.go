package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hose_installation/internal/models"
	"hose_installation/internal/nfc"

	"github.com/spf13/cobra"
)

type statusOptions struct {
	watch    bool
	interval time.Duration
}

func newStatusCmd(a *app) *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Poll the NFC reader and print its status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			poller := nfc.NewPoller(nfc.Options{
				Endpoint:   a.cfg.NFC.Endpoint,
				Timeout:    a.cfg.NFC.Timeout,
				Retries:    a.cfg.NFC.Retries,
				RetryDelay: a.cfg.NFC.RetryDelay,
				Logger:     a.log.Named("nfc"),
			})
			interval := opts.interval
			if interval <= 0 {
				interval = a.cfg.NFC.Interval
			}
			return runStatus(cmd.Context(), poller, cmd.OutOrStdout(), opts.watch, interval)
		},
	}

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Keep polling until interrupted")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Polling period with --watch (defaults to nfc.interval)")

	return cmd
}

func runStatus(ctx context.Context, poller *nfc.Poller, out io.Writer, watch bool, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if !watch {
		return enc.Encode(poller.Poll(ctx))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	task := poller.Start(ctx, interval, func(s models.StatusSnapshot) {
		if err := enc.Encode(s); err != nil {
			select {
			case errs <- err:
			default:
			}
		}
	})
	defer task.Cancel()

	select {
	case <-ctx.Done():
		<-task.Done()
		return nil
	case err := <-errs:
		return err
	}
}
