package srv

import (
	"context"
	"errors"
	"time"

	"github.com/sandevgo/stravamcp/pkg/log"
)

const shutdownTimeout = 10 * time.Second

// ErrStopped is returned from Start by a service that finished on its own
// (e.g. the peer closed the connection). Run treats it as a clean stop.
var ErrStopped = errors.New("service stopped")

type Service interface {
	// Start may block until the service stops.
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Run starts all services and blocks until ctx is done or a service exits.
// Services are then shut down in reverse order. The first start failure is
// returned.
func Run(ctx context.Context, services []Service) error {
	logger := log.FromCtx(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exited := make(chan error, len(services))
	for _, service := range services {
		go func(service Service) {
			err := service.Start(runCtx)
			if err != nil && !errors.Is(err, ErrStopped) {
				logger.Error().Err(err).Msgf("%T failed", service)
				exited <- err
				return
			}
			if err != nil {
				exited <- nil
			}
		}(service)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-exited:
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer stop()

	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}

	return runErr
}
