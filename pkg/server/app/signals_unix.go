//go:build !windows

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// listenSignals rotates the log file on SIGUSR1 until ctx is done.
func (a *App) listenSignals(ctx context.Context) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1)

	go func() {
		defer signal.Stop(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-signals:
				a.Deps.Logger.Info().Msgf("Closing and re-opening log files for rotation: %+v", sig)
				if err := a.Deps.LogSink.Rotate(); err != nil {
					a.Deps.Logger.Error().Err(err).Msg("Log rotation failed")
				}
			}
		}
	}()
}
