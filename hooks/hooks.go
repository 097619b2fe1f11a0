// Package hooks dispatches system lifecycle notifications to interested
// subsystems: one-time initialization and the two-phase clock-frequency
// change (lock everything, reprogram, unlock).
//
// Dispatch is synchronous and in registration order; a frequency change
// must not proceed until every pre-change subscriber has run.
package hooks

import "sync"

// Stage identifies a lifecycle notification.
type Stage uint8

const (
	StageInit Stage = iota
	StagePreFreqChange
	StageFreqChange
)

// Event carries the stage and, for frequency stages, the new input
// clock in Hz (zero for StageInit).
type Event struct {
	Stage Stage
	Hz    uint32
}

// Notifier fans events out to registered subscribers.
type Notifier struct {
	mu   sync.Mutex
	subs map[Stage][]func(Event)
}

func New() *Notifier {
	return &Notifier{subs: map[Stage][]func(Event){}}
}

// Register installs fn for one stage. Subscribers for a stage run in
// registration order.
func (n *Notifier) Register(s Stage, fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs[s] = append(n.subs[s], fn)
}

// Publish runs every subscriber of e.Stage before returning.
func (n *Notifier) Publish(e Event) {
	n.mu.Lock()
	fns := n.subs[e.Stage]
	n.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}

// NotifyFreqChange announces a completed clock-tree change: the
// pre-change stage runs fully (subscribers take their locks), then the
// change stage (subscribers reprogram and release).
func (n *Notifier) NotifyFreqChange(hz uint32) {
	n.Publish(Event{Stage: StagePreFreqChange, Hz: hz})
	n.Publish(Event{Stage: StageFreqChange, Hz: hz})
}

// FreqSensitive is a subsystem whose timing depends on the input clock.
// i2c.Driver satisfies it.
type FreqSensitive interface {
	OnInit()
	OnPreFreqChange()
	OnFreqChange()
}

// Bind subscribes all three of a subsystem's lifecycle methods.
func Bind(n *Notifier, s FreqSensitive) {
	n.Register(StageInit, func(Event) { s.OnInit() })
	n.Register(StagePreFreqChange, func(Event) { s.OnPreFreqChange() })
	n.Register(StageFreqChange, func(Event) { s.OnFreqChange() })
}
