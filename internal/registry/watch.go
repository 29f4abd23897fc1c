package registry

import (
	"context"
	"time"

	"github.com/bryanchriswhite/swaytab/internal/compositor"
	"github.com/bryanchriswhite/swaytab/internal/logger"
)

// EventDialer opens a fresh event subscription connection
type EventDialer func() (compositor.EventSource, error)

const (
	backoffBase = 500 * time.Millisecond
	backoffMax  = 30 * time.Second
)

// Watch consumes compositor events until ctx is cancelled. On
// disconnect the registry serves last-known data, marked degraded, and
// reconnects with bounded exponential backoff; each reconnect
// resubscribes and reconciles. A ticker triggers periodic
// reconciliation while the link is up.
func (r *Registry) Watch(ctx context.Context, dial EventDialer, reconcileEvery time.Duration) {
	log := logger.WithComponent("registry")
	backoff := backoffBase

	for ctx.Err() == nil {
		src, err := dial()
		if err == nil {
			err = src.Subscribe("window", "workspace")
			if err != nil {
				src.Close()
			}
		}
		if err != nil {
			r.setDegraded(true)
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("Compositor event link down, serving stale data")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, backoffMax)
			continue
		}

		r.setDegraded(false)
		backoff = backoffBase
		if err := r.Reconcile(); err != nil {
			log.Warn().Err(err).Msg("Reconciliation after reconnect failed")
		}
		log.Info().Msg("Subscribed to compositor window events")

		r.consume(ctx, src, reconcileEvery)
		src.Close()
	}
}

// consume pumps events from one subscription until it fails or ctx ends
func (r *Registry) consume(ctx context.Context, src compositor.EventSource, reconcileEvery time.Duration) {
	log := logger.WithComponent("registry")

	events := make(chan compositor.Event)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev, err := src.NextEvent()
			if err != nil {
				select {
				case errc <- err:
				case <-done:
				}
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	// Close the socket on cancellation so the reader goroutine unblocks
	go func() {
		select {
		case <-ctx.Done():
			src.Close()
		case <-done:
		}
	}()

	ticker := time.NewTicker(reconcileEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errc:
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("Compositor event stream ended")
			}
			return
		case ev := <-events:
			r.HandleEvent(ev)
		case <-ticker.C:
			if err := r.Reconcile(); err != nil {
				log.Warn().Err(err).Msg("Periodic reconciliation failed")
			}
		}
	}
}
