//go:build windows

package app

import "context"

// listenSignals is a no-op: there is no SIGUSR1 on Windows.
func (a *App) listenSignals(context.Context) {}
