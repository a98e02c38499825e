package clinicauth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// eventDispatcher decouples session operations from sink latency: events
// are queued on a buffered channel and drained by one goroutine, so a
// slow sink can never stall a login or a hydration.
type eventDispatcher struct {
	cfg       EventConfig
	sink      Sink
	ch        chan SessionEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newEventDispatcher(cfg EventConfig, sink Sink) *eventDispatcher {
	if cfg.Disabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &eventDispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan SessionEvent, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *eventDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			// Drain whatever was queued before Close.
			for {
				select {
				case event := <-d.ch:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

func (d *eventDispatcher) Emit(ctx context.Context, event SessionEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.BlockIfFull {
		select {
		case d.ch <- event:
		case <-ctx.Done():
		case <-d.done:
		}
		return
	}

	select {
	case d.ch <- event:
	case <-d.done:
	default:
		d.dropped.Add(1)
	}
}

func (d *eventDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *eventDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// emitEvent builds and queues one event. The detail closure runs only
// when a dispatcher is active, so callers can defer map construction.
func (m *Manager) emitEvent(ctx context.Context, typ EventType, success bool, user *User, kind ErrorKind, err error, detail func() map[string]string) {
	if m.events == nil {
		return
	}
	event := SessionEvent{
		Timestamp: time.Now(),
		Type:      typ,
		Success:   success,
	}
	if user != nil {
		event.UserID = user.ID
		event.Role = user.Role
	}
	if kind != KindNone {
		event.Kind = kind.String()
	}
	if err != nil {
		event.Error = err.Error()
	}
	if detail != nil {
		event.Detail = detail()
	}
	m.events.Emit(ctx, event)
}
