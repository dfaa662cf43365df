package timer

import (
	"context"
	"log"
	"sync"
	"time"

	"countdown/internal/entry"

	"github.com/google/uuid"
)

const (
	defaultTickInterval     = time.Second
	defaultHistoryCapacity  = 100
	defaultSubscriberBufCap = 100
)

// Engine owns the countdown state machine: the entry buffer, run state,
// remaining seconds and the derived display fields. Every mutation,
// including the tick callback, is serialized by one mutex, and every
// change is published to subscribers in order.
type Engine struct {
	mu        sync.Mutex
	buf       entry.Buffer
	running   bool
	closed    bool
	total     int
	remaining int
	percent   float64
	hours     int
	minutes   int
	seconds   int

	// gen identifies the current run; ticks from older runs are dropped.
	gen    uint64
	cancel context.CancelFunc

	interval  time.Duration
	newTicker TickerFunc
	history   *RingBuffer

	subMu       sync.RWMutex
	subscribers map[string]chan Event
}

// Option configures an Engine.
type Option func(*Engine)

// WithTicker replaces the ticker source, mainly for tests.
func WithTicker(f TickerFunc) Option {
	return func(e *Engine) { e.newTicker = f }
}

// WithInterval sets the tick interval. The default is one second.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithHistorySize sets how many recent events History returns.
func WithHistorySize(n int) Option {
	return func(e *Engine) { e.history = NewRingBuffer(n) }
}

// New creates an idle engine with an all-zero entry.
func New(opts ...Option) *Engine {
	e := &Engine{
		percent:     1,
		interval:    defaultTickInterval,
		newTicker:   NewRealTicker,
		history:     NewRingBuffer(defaultHistoryCapacity),
		subscribers: make(map[string]chan Event),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PressDigit appends d to the entry buffer. Ignored while running.
func (e *Engine) PressDigit(d int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running || e.closed {
		return
	}
	if e.buf.Press(d) {
		e.syncDisplay()
		e.publish(EventEntry)
	}
}

// Backspace removes the last entered digit. Ignored while running.
func (e *Engine) Backspace() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running || e.closed {
		return
	}
	if e.buf.Backspace() {
		e.syncDisplay()
		e.publish(EventEntry)
	}
}

// LoadEntry replaces the entry buffer, e.g. from a preset. It reports
// false and leaves the buffer alone while a run is in progress.
func (e *Engine) LoadEntry(b entry.Buffer) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running || e.closed {
		return false
	}
	e.buf = b
	e.syncDisplay()
	e.publish(EventEntry)
	return true
}

// Start begins a countdown from the entered time. Calling Start while a
// run is in progress does nothing. A zero entry completes immediately
// without ticking.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running || e.closed {
		return
	}

	e.total = e.buf.TotalSeconds()
	e.remaining = e.total
	e.percent = 1
	e.running = true
	e.setDisplay(e.remaining)
	log.Printf("timer started: entry=%s total=%ds", e.buf, e.total)
	e.publish(EventStarted)

	if e.remaining == 0 {
		e.expire()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.gen++
	go e.run(ctx, e.newTicker(e.interval), e.gen)
}

// Stop ends the current run. The last remaining/percent values are kept;
// the display fields snap back to the entry buffer. Calling Stop while
// idle does nothing.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.halt()
	e.syncDisplay()
	log.Printf("timer stopped: remaining=%ds", e.remaining)
	e.publish(EventStopped)
}

// Close stops any run and closes every subscription.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.running {
		e.halt()
		e.syncDisplay()
	}
	e.closed = true
	e.mu.Unlock()

	e.subMu.Lock()
	for id, ch := range e.subscribers {
		close(ch)
		delete(e.subscribers, id)
	}
	e.subMu.Unlock()
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// History returns recently published events, oldest first.
func (e *Engine) History() []Event {
	return e.history.ReadAll()
}

// Subscribe registers an observer. It returns the subscription ID, a
// channel of subsequent events and the state as of registration.
// Delivery never blocks the engine: a subscriber whose buffer is full
// misses that event.
func (e *Engine) Subscribe() (string, <-chan Event, Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subID := uuid.New().String()
	ch := make(chan Event, defaultSubscriberBufCap)

	e.subMu.Lock()
	if e.closed {
		close(ch)
	} else {
		e.subscribers[subID] = ch
	}
	e.subMu.Unlock()

	return subID, ch, e.snapshot()
}

// Unsubscribe removes an observer and closes its channel.
func (e *Engine) Unsubscribe(subID string) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	if ch, ok := e.subscribers[subID]; ok {
		close(ch)
		delete(e.subscribers, subID)
	}
}

// run waits on the ticker and applies one tick per wake-up until the run
// ends or is cancelled.
func (e *Engine) run(ctx context.Context, t Ticker, gen uint64) {
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if !e.tick(gen) {
				return
			}
		}
	}
}

// tick decrements the countdown once. It reports whether the run
// continues.
func (e *Engine) tick(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running || gen != e.gen || e.remaining <= 0 {
		return false
	}

	e.remaining--
	e.percent = percentOf(e.remaining, e.total)
	e.setDisplay(e.remaining)
	e.publish(EventTick)

	if e.remaining == 0 {
		e.expire()
		return false
	}
	return true
}

// expire ends a run that counted down to zero. Must hold e.mu.
func (e *Engine) expire() {
	e.halt()
	e.remaining = 0
	e.percent = 1
	e.syncDisplay()
	log.Printf("timer expired: entry=%s", e.buf)
	e.publish(EventExpired)
}

// halt clears the running flag and cancels the tick loop. Must hold e.mu.
func (e *Engine) halt() {
	e.running = false
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// syncDisplay copies the entry buffer into the display fields.
func (e *Engine) syncDisplay() {
	e.hours = e.buf.Hours()
	e.minutes = e.buf.Minutes()
	e.seconds = e.buf.Seconds()
}

func (e *Engine) setDisplay(remaining int) {
	e.hours = remaining / 3600
	e.minutes = (remaining / 60) % 60
	e.seconds = remaining % 60
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		Running:          e.running,
		Hours:            e.hours,
		Minutes:          e.minutes,
		Seconds:          e.seconds,
		SecondsRemaining: e.remaining,
		TotalSeconds:     e.total,
		PercentRemaining: e.percent,
		Entry:            e.buf.String(),
	}
}

// publish records an event and fans it out. Must hold e.mu.
func (e *Engine) publish(t EventType) {
	event := Event{
		Type:      t,
		Snapshot:  e.snapshot(),
		Timestamp: time.Now().UTC(),
	}
	e.history.Write(event)

	e.subMu.RLock()
	defer e.subMu.RUnlock()

	for _, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber channel full, drop the event.
		}
	}
}

func percentOf(remaining, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(remaining) / float64(total)
}
