package i2ctest

import (
	"fmt"

	"i2cmaster-go/i2c"
)

// DefaultInputHz is the simulated controller input clock.
const DefaultInputHz = 16_000_000

// Bench is a one-port driver wired entirely to simulated hardware.
type Bench struct {
	Clock  *SimClock
	Ctrl   *Controller
	SCL    *SimLine
	SDA    *SimLine
	Driver *i2c.Driver
	Port   *i2c.Port

	// InputHz feeds the driver's clock source; mutable so tests can
	// model a clock-tree change.
	InputHz uint32

	// Logs collects driver diagnostics.
	Logs []string
}

// NewBench builds a single-port bench with the given peers attached.
func NewBench(peers ...Peer) *Bench {
	b := &Bench{
		Clock:   NewSimClock(),
		Ctrl:    NewController(peers...),
		SCL:     NewSimLine(),
		SDA:     NewSimLine(),
		InputHz: DefaultInputHz,
	}
	d, err := i2c.New(i2c.Config{
		Ports:   []i2c.PortConfig{{ID: 0, KBps: 100, SCL: b.SCL, SDA: b.SDA, Regs: b.Ctrl}},
		InputHz: func() uint32 { return b.InputHz },
		Clock:   b.Clock,
		Logf:    func(format string, args ...any) { b.Logs = append(b.Logs, fmt.Sprintf(format, args...)) },
	})
	if err != nil {
		panic(err)
	}
	b.Driver = d
	b.Port, _ = d.Port(0)
	return b
}
