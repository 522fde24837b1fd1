package connector

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/viper"
)

// State is the connection state of a Worker.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Backoff parameterizes the delay between connection attempts.
// BaseDelay == MaxDelay with no jitter gives a fixed interval.
type Backoff struct {
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	JitterPercent uint64
}

// BackoffFromViper reads rabbitmq.reconnect.*.
func BackoffFromViper() Backoff {
	return Backoff{
		BaseDelay:     viper.GetDuration("rabbitmq.reconnect.base_delay"),
		MaxDelay:      viper.GetDuration("rabbitmq.reconnect.max_delay"),
		JitterPercent: viper.GetUint64("rabbitmq.reconnect.jitter_percent"),
	}
}

// build returns a fresh backoff; go-retry backoffs carry attempt state.
func (b Backoff) build() retry.Backoff {
	base := b.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	// Jitter wraps the cap so delays keep spreading once they reach MaxDelay.
	backoff := retry.NewExponential(base)
	if b.MaxDelay > 0 {
		backoff = retry.WithCappedDuration(b.MaxDelay, backoff)
	}
	if b.JitterPercent > 0 {
		backoff = retry.WithJitterPercent(b.JitterPercent, backoff)
	}

	return backoff
}

// DialFunc opens a session.
type DialFunc[S io.Closer] func(ctx context.Context) (S, error)

// ServeFunc uses a session until it breaks or ctx is done.
type ServeFunc[S io.Closer] func(ctx context.Context, session S) error

// Worker keeps one session to a broker alive: it dials until it succeeds,
// serves the session, and dials again when the session ends.
type Worker[S io.Closer] struct {
	dial     DialFunc[S]
	serve    ServeFunc[S]
	backoff  Backoff
	state    atomic.Int32
	attempts atomic.Int64
}

// NewWorker creates a new connector worker.
func NewWorker[S io.Closer](dial DialFunc[S], serve ServeFunc[S], backoff Backoff) *Worker[S] {
	return &Worker[S]{
		dial:    dial,
		serve:   serve,
		backoff: backoff,
	}
}

// State returns the current connection state. Safe for concurrent use.
func (w *Worker[S]) State() State {
	return State(w.state.Load())
}

// Attempts returns the number of dial attempts made so far.
func (w *Worker[S]) Attempts() int64 {
	return w.attempts.Load()
}

func (w *Worker[S]) setState(s State) {
	w.state.Store(int32(s))
}

// Run blocks until ctx is done. Sessions are closed before Run returns.
func (w *Worker[S]) Run(ctx context.Context) error {
	slog.Info("Broker worker started",
		"base_delay", w.backoff.BaseDelay,
		"max_delay", w.backoff.MaxDelay,
		"jitter_percent", w.backoff.JitterPercent,
	)

	for {
		session, err := w.connect(ctx)
		if err != nil {
			w.setState(Disconnected)
			slog.Info("Broker worker shutting down")

			return nil
		}

		w.setState(Connected)
		slog.Info("Connected to RabbitMQ")

		serveErr := w.serve(ctx, session)

		if err := session.Close(); err != nil {
			slog.Error("Error closing RabbitMQ session", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed")
		}
		w.setState(Disconnected)

		if ctx.Err() != nil {
			slog.Info("Broker worker shutting down")

			return nil
		}

		slog.Warn("RabbitMQ session ended, reconnecting", "error", serveErr)
	}
}

// connect dials until it gets a session or ctx is done. Attempts never overlap.
func (w *Worker[S]) connect(ctx context.Context) (S, error) {
	var session S

	err := retry.Do(ctx, w.backoff.build(), func(ctx context.Context) error {
		w.setState(Connecting)
		attempt := w.attempts.Add(1)

		s, err := w.dial(ctx)
		if err != nil {
			w.setState(Disconnected)
			slog.Error("Error connecting to RabbitMQ, retrying", "attempt", attempt, "error", err)

			return retry.RetryableError(err)
		}

		session = s

		return nil
	})

	return session, err
}
