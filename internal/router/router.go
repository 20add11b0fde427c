package router

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/futures-stream/internal/model"
)

// Dispatcher classifies frames from one session's read loop and pushes the
// resulting events onto that session's EventQueue, in arrival order.
type Dispatcher struct {
	queue  *EventQueue
	logger *slog.Logger

	mu           sync.RWMutex
	received     int64
	dispatched   int64
	malformed    int64
	unrecognized int64
	ticks        int64
	controls     int64
	acks         int64
	ctrlErrors   int64
}

// DispatchStats contains runtime statistics.
type DispatchStats struct {
	FramesReceived   int64
	EventsDispatched int64
	MalformedFrames  int64
	Unrecognized     int64
	Ticks            int64
	Controls         int64
	Acks             int64 // Subscription acknowledgements
	ControlErrors    int64 // Error replies from the exchange
	Queue            QueueStats
}

// NewDispatcher creates a Dispatcher writing to queue.
func NewDispatcher(queue *EventQueue, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		queue:  queue,
		logger: logger,
	}
}

// Dispatch classifies one text frame and enqueues the event. A malformed
// frame is logged and returned as an error; nothing is enqueued for it.
func (d *Dispatcher) Dispatch(raw []byte, receivedAt time.Time) (Event, error) {
	d.mu.Lock()
	d.received++
	d.mu.Unlock()

	ev, err := Classify(raw, receivedAt)
	if err != nil {
		d.logger.Error("skipping malformed frame", "error", err, "raw", string(raw))
		d.mu.Lock()
		d.malformed++
		d.mu.Unlock()
		return ev, err
	}

	switch ev.Kind {
	case KindTick:
		d.mu.Lock()
		d.ticks++
		d.mu.Unlock()
	case KindControl:
		d.mu.Lock()
		d.controls++
		switch ev.Control.Type {
		case model.ControlAck:
			d.acks++
		case model.ControlError:
			d.ctrlErrors++
		}
		d.mu.Unlock()

		switch ev.Control.Type {
		case model.ControlError:
			d.logger.Warn("exchange error reply", "id", ev.Control.ID, "raw", string(raw))
		case model.ControlWelcome, model.ControlAck, model.ControlPong:
			d.logger.Debug("control message", "id", ev.Control.ID, "type", ev.Control.Type)
		default:
			d.logger.Info("unknown control message", "id", ev.Control.ID, "type", ev.Control.Type)
		}
	default:
		d.logger.Warn("unrecognized message", "raw", string(raw))
		d.mu.Lock()
		d.unrecognized++
		d.mu.Unlock()
	}

	if d.queue.Push(ev) {
		d.mu.Lock()
		d.dispatched++
		d.mu.Unlock()
	}

	return ev, nil
}

// Stats returns current statistics.
func (d *Dispatcher) Stats() DispatchStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return DispatchStats{
		FramesReceived:   d.received,
		EventsDispatched: d.dispatched,
		MalformedFrames:  d.malformed,
		Unrecognized:     d.unrecognized,
		Ticks:            d.ticks,
		Controls:         d.controls,
		Acks:             d.acks,
		ControlErrors:    d.ctrlErrors,
		Queue:            d.queue.Stats(),
	}
}
