// Package shutdown provides graceful shutdown handling for long crawls.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Callback is a cleanup function called during shutdown.
type Callback func(ctx context.Context) error

// Handler cancels a crawl context on SIGINT/SIGTERM and runs registered
// cleanup callbacks in reverse registration order.
type Handler struct {
	mu            sync.Mutex
	callbacks     []Callback
	callbackNames []string

	isShuttingDown atomic.Bool
	done           chan struct{}
	timeout        time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	sigChan chan os.Signal

	onShutdownDone func(elapsed time.Duration, errs []error)
}

// Config holds shutdown configuration.
type Config struct {
	Timeout        time.Duration
	Signals        []os.Signal
	OnShutdownDone func(elapsed time.Duration, errs []error)
}

// New creates a new shutdown handler.
func New(cfg Config) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if len(cfg.Signals) == 0 {
		cfg.Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ctx, cancel := context.WithCancel(context.Background())

	h := &Handler{
		done:           make(chan struct{}),
		timeout:        cfg.Timeout,
		ctx:            ctx,
		cancel:         cancel,
		sigChan:        make(chan os.Signal, 1),
		onShutdownDone: cfg.OnShutdownDone,
	}

	signal.Notify(h.sigChan, cfg.Signals...)

	return h
}

// NewDefault creates a handler with default configuration.
func NewDefault() *Handler {
	return New(Config{})
}

// Register registers a named shutdown callback.
func (h *Handler) Register(name string, callback Callback) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.callbacks = append(h.callbacks, callback)
	h.callbackNames = append(h.callbackNames, name)
}

// RegisterFunc registers a simple cleanup function.
func (h *Handler) RegisterFunc(name string, fn func()) {
	h.Register(name, func(ctx context.Context) error {
		fn()
		return nil
	})
}

// Context returns the crawl context. It is cancelled when shutdown begins.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// IsShuttingDown returns whether shutdown is in progress.
func (h *Handler) IsShuttingDown() bool {
	return h.isShuttingDown.Load()
}

// Done returns a channel that is closed when shutdown completes.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Listen starts watching for signals in the background.
func (h *Handler) Listen() {
	go func() {
		select {
		case <-h.sigChan:
			h.Shutdown()
		case <-h.ctx.Done():
			// Shutdown started programmatically
		}
	}()
}

// Trigger triggers shutdown programmatically, as if a signal arrived.
func (h *Handler) Trigger() {
	select {
	case h.sigChan <- syscall.SIGTERM:
	default:
		// Signal already pending
	}
}

// Shutdown initiates graceful shutdown and runs callbacks LIFO.
func (h *Handler) Shutdown() {
	if !h.isShuttingDown.CompareAndSwap(false, true) {
		return
	}

	start := time.Now()
	h.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), h.timeout)
	defer shutdownCancel()

	h.mu.Lock()
	callbacks := make([]Callback, len(h.callbacks))
	names := make([]string, len(h.callbackNames))
	copy(callbacks, h.callbacks)
	copy(names, h.callbackNames)
	h.mu.Unlock()

	var errs []error
	for i := len(callbacks) - 1; i >= 0; i-- {
		if err := h.runCallback(shutdownCtx, names[i], callbacks[i]); err != nil {
			errs = append(errs, err)
		}
	}

	if h.onShutdownDone != nil {
		h.onShutdownDone(time.Since(start), errs)
	}

	close(h.done)
}

func (h *Handler) runCallback(ctx context.Context, name string, callback Callback) error {
	done := make(chan error, 1)

	go func() {
		done <- callback(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return &TimeoutError{CallbackName: name}
	}
}

// TimeoutError is returned when a callback exceeds the shutdown timeout.
type TimeoutError struct {
	CallbackName string
}

func (e *TimeoutError) Error() string {
	return "shutdown callback timed out: " + e.CallbackName
}
