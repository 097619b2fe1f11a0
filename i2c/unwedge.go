package i2c

import (
	"time"

	"i2cmaster-go/errcode"
)

const (
	// Half of one bit-banged clock cycle: 5 us low and 5 us high is
	// roughly 100 kHz.
	halfCycle = 5 * time.Microsecond

	// A peer left mid-byte needs at most 9 clock edges (8 data bits plus
	// the ack slot) to reach a byte boundary.
	maxRecoveryPulses = 9

	clockReleaseTries = 3
)

// releaseSCL tries to let the clock line float high, retrying a few
// times in case a peer is stretching the clock.
func (p *Port) releaseSCL() error {
	scl := p.cfg.SCL
	for i := 0; i < clockReleaseTries; i++ {
		scl.Set(true)
		if scl.Get() {
			return nil
		}
		p.d.clk.Sleep(halfCycle)
	}
	p.d.logf("i2c%d: clock stretched too long?", p.cfg.ID)
	return &errcode.E{C: errcode.Timeout, Op: "i2c.releaseSCL", Msg: "clock line held low"}
}

// Recover clears a wedged bus by bit-banging the two lines directly.
//
// Unless forced, a bus whose lines both read high is left alone. A
// wedged peer is either mid-write, waiting for clock edges, or mid-read,
// holding the data line low: up to 9 clock pulses with the data line
// released get it to a byte boundary (one of the cycles NACKs an
// in-progress write, or finishes an in-progress read), and the final
// software-driven stop returns its state machine to idle.
//
// The returned error is diagnostic: recovery failing to release the
// clock line is reported but not escalated further.
func (p *Port) Recover(force bool) error {
	scl, sda := p.cfg.SCL, p.cfg.SDA
	clk := p.d.clk

	if !force {
		if scl.Get() && sda.Get() {
			// Bus is idle, not wedged.
			return nil
		}
		p.d.logf("i2c%d: wedge detected; fixing", p.cfg.ID)
	}

	if err := scl.ConfigureOpenDrain(); err != nil {
		return err
	}
	if err := sda.ConfigureOpenDrain(); err != nil {
		return err
	}

	if !scl.Get() {
		// Clock is low; give a stretching peer a chance to let go.
		if err := p.releaseSCL(); err != nil {
			return err
		}
	}

	clk.Sleep(halfCycle)
	for i := 0; i < maxRecoveryPulses; i++ {
		if err := p.releaseSCL(); err != nil {
			return err
		}
		clk.Sleep(halfCycle)
		scl.Set(false)
		clk.Sleep(halfCycle)
		if sda.Get() {
			// Peer has released the data line; no more pulses needed.
			break
		}
	}

	// Software-driven stop: data low, clock high, data released high.
	sda.Set(false)
	clk.Sleep(halfCycle)
	if err := p.releaseSCL(); err != nil {
		return err
	}
	clk.Sleep(halfCycle)
	sda.Set(true)
	if !sda.Get() {
		p.d.logf("i2c%d: sda is still low", p.cfg.ID)
	}
	clk.Sleep(halfCycle)

	return nil
}
