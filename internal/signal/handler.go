// Package signal turns SIGINT/SIGTERM into context cancellation for cardmark.
//
// The first signal cancels the context so in-flight card writes finish and a
// batch stops scheduling new cards. A second signal calls the force func,
// which by default exits with status 130.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ExitInterrupted is the conventional status for a process stopped by SIGINT.
const ExitInterrupted = 130

// Handler cancels a context on the first interrupt and forces exit on the second.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{}
	sigChan     chan os.Signal
	force       func()

	mu       sync.Mutex
	count    int
	stopOnce sync.Once
}

// NewHandler creates a handler listening for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	err := run(h.Context())
func NewHandler(parent context.Context) *Handler {
	return newHandler(parent, func() { os.Exit(ExitInterrupted) }, true)
}

func newHandler(parent context.Context, force func(), notify bool) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		sigChan:     make(chan os.Signal, 2),
		force:       force,
	}
	if notify {
		signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	}
	go h.listen()
	return h
}

// Context returns the context canceled by the first signal.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted closes when the first signal arrives.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop releases the signal subscription and cancels the context.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

func (h *Handler) handleSignal() {
	h.mu.Lock()
	h.count++
	n := h.count
	h.mu.Unlock()

	switch n {
	case 1:
		h.cancel()
		close(h.interrupted)
	case 2:
		h.force()
	}
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.done:
			return
		case <-h.sigChan:
			h.handleSignal()
		}
	}
}
