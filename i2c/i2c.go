package i2c

import (
	"sync"
	"time"

	"i2cmaster-go/errcode"
)

// Clock supplies time to the driver. Sleep is a cooperative yield: the
// bus is slow, so the poller gives the processor away between polls
// rather than spinning. Tests substitute a simulated clock.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// WallClock is the default Clock, backed by the time package.
var WallClock Clock = wallClock{}

// PortConfig describes one physical bus. Immutable once handed to New.
type PortConfig struct {
	ID   int
	KBps uint32 // target bit rate

	// Recovery lines. Used only by Recover and LineLevels, never for
	// protocol decisions during a normal transfer.
	SCL Line
	SDA Line

	Regs Registers
}

// Config wires the driver's injected capabilities.
type Config struct {
	Ports []PortConfig

	// InputHz reports the controller's current input clock. Re-read on
	// every SetFreq so a clock-tree change is picked up.
	InputHz func() uint32

	Clock Clock

	// Logf receives non-fatal diagnostics (wedge detected, clock
	// stretched too long). Nil means silent.
	Logf func(format string, args ...any)
}

// Driver owns the port registry. One instance per controller; the
// registry is read-only after New.
type Driver struct {
	ports   []*Port
	inputHz func() uint32
	clk     Clock
	logf    func(string, ...any)
}

// Port is one registered bus instance. All register access on a port is
// serialized by its lock; callers must hold it for the full duration of
// a transaction, including any recovery triggered by failure.
type Port struct {
	d   *Driver
	cfg PortConfig
	mu  sync.Mutex
}

// New builds a driver over the given ports. The port slice is copied;
// descriptors live for the process lifetime.
func New(cfg Config) (*Driver, error) {
	if cfg.InputHz == nil {
		return nil, &errcode.E{C: errcode.InvalidArgument, Op: "i2c.New", Msg: "InputHz is required"}
	}
	d := &Driver{
		inputHz: cfg.InputHz,
		clk:     cfg.Clock,
		logf:    cfg.Logf,
	}
	if d.clk == nil {
		d.clk = WallClock
	}
	if d.logf == nil {
		d.logf = func(string, ...any) {}
	}
	for _, pc := range cfg.Ports {
		if pc.Regs == nil || pc.SCL == nil || pc.SDA == nil {
			return nil, &errcode.E{C: errcode.InvalidArgument, Op: "i2c.New", Msg: "port capabilities incomplete"}
		}
		d.ports = append(d.ports, &Port{d: d, cfg: pc})
	}
	return d, nil
}

// Port looks up a registered port by id.
func (d *Driver) Port(id int) (*Port, bool) {
	for _, p := range d.ports {
		if p.cfg.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Ports returns the registry in registration order.
func (d *Driver) Ports() []*Port { return d.ports }

func (p *Port) ID() int { return p.cfg.ID }

// Lock acquires the port lock. Callers issuing transfers directly must
// hold it across the whole transaction (and across a whole start/stop
// chain when splitting one transaction over several Transfer calls).
func (p *Port) Lock()   { p.mu.Lock() }
func (p *Port) Unlock() { p.mu.Unlock() }

// LineLevels reads both lines' instantaneous logic levels. Diagnostic
// only; independent of port busy state.
func (p *Port) LineLevels() LineLevels {
	var l LineLevels
	if p.cfg.SDA.Get() {
		l |= LineSDAHigh
	}
	if p.cfg.SCL.Get() {
		l |= LineSCLHigh
	}
	return l
}

// initPort recovers the bus (optionally forced) and programs the bit
// rate. Called with the port lock held.
func (p *Port) initPort(force bool) {
	if err := p.Recover(force); err != nil {
		p.d.logf("i2c%d: recovery failed: %v", p.cfg.ID, err)
	}
	p.SetFreq()
}

// OnInit is the environment's initialization hook: unwedge (only if
// wedged) then configure timing, for every registered port.
func (d *Driver) OnInit() {
	for _, p := range d.ports {
		p.mu.Lock()
		p.initPort(false)
		p.mu.Unlock()
	}
}

// OnPreFreqChange locks every port so a clock-tree change cannot
// interrupt a transaction mid-byte. Locks are taken in registry order
// and held until OnFreqChange completes.
func (d *Driver) OnPreFreqChange() {
	for _, p := range d.ports {
		p.mu.Lock()
	}
}

// OnFreqChange reprograms every port's divider from the new input clock,
// then releases the locks taken by OnPreFreqChange. No port is released
// until all ports are reprogrammed, so no transaction can observe a
// half-changed clock configuration.
func (d *Driver) OnFreqChange() {
	for _, p := range d.ports {
		p.SetFreq()
	}
	for _, p := range d.ports {
		p.mu.Unlock()
	}
}
