package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Sink receives dispatched events. Handle must be safe for concurrent use;
// a returned error is logged by the dispatcher but does not affect the
// call that produced the event.
type Sink interface {
	Handle(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, event Event) error

// Handle implements Sink.
func (f SinkFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Dispatcher fans events out to registered sinks. Dispatch is synchronous:
// it returns once every sink has seen the event, so observers never see
// events out of call order.
type Dispatcher struct {
	mu    sync.RWMutex
	sinks []Sink
	log   *logrus.Logger
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(log *logrus.Logger, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = logrus.New()
	}
	return &Dispatcher{sinks: sinks, log: log}
}

// AddSink registers an additional sink.
func (d *Dispatcher) AddSink(sink Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, sink)
}

// Dispatch stamps the event with an id and timestamp and delivers it to
// every sink. Sink errors are logged, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	event.ID = uuid.New()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	d.mu.RLock()
	sinks := make([]Sink, len(d.sinks))
	copy(sinks, d.sinks)
	d.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.Handle(gctx, event); err != nil {
				d.log.WithFields(logrus.Fields{
					"event_id":   event.ID,
					"event_type": event.Type,
				}).WithError(err).Warn("event sink failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}

// LogSink writes every event as a structured log line.
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink creates a sink logging at info level.
func NewLogSink(log *logrus.Logger) *LogSink {
	if log == nil {
		log = logrus.New()
	}
	return &LogSink{log: log}
}

// Handle implements Sink.
func (s *LogSink) Handle(ctx context.Context, event Event) error {
	s.log.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"account":    event.Account,
		"data":       event.Data,
	}).Info("domain event")
	return nil
}
