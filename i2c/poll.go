package i2c

import (
	"time"

	"i2cmaster-go/errcode"
)

const (
	// statusTimeout bounds every wait for a status condition. The bus
	// should be much faster than this; the bound exists so a dead or
	// wedged peer cannot hang a caller.
	statusTimeout = 10 * time.Millisecond

	// pollInterval is the cooperative yield between status polls.
	pollInterval = 100 * time.Microsecond
)

// waitStatus blocks until every bit in mask reads set, a fault bit
// appears, or statusTimeout elapses. The deadline is computed once at
// entry, so repeated partial progress cannot extend the total wait.
func (p *Port) waitStatus(mask Status) error {
	deadline := p.d.clk.Now().Add(statusTimeout)

	for p.d.clk.Now().Before(deadline) {
		st := p.cfg.Regs.Status()

		if st&mask == mask {
			return nil
		}
		if st&statusErrors != 0 {
			return errcode.BusFault
		}

		// I2C is slow, so let other work run while we wait.
		p.d.clk.Sleep(pollInterval)
	}

	return errcode.Timeout
}

// sendStart issues a start condition and transmits the address byte.
// addr carries the direction bit in its LSB. A start condition that
// never completes is reported as FailedStart, the trigger for bus
// recovery; any later failure propagates as-is.
func (p *Port) sendStart(addr uint8) error {
	regs := p.cfg.Regs

	regs.SetControl(regs.Control() | CtrlStart)
	if err := p.waitStatus(StatusStartSent); err != nil {
		return errcode.FailedStart
	}

	regs.WriteData(addr)
	if err := p.waitStatus(StatusAddrAcked); err != nil {
		return err
	}

	// Reading the aux status clears the address-acknowledged condition.
	_ = regs.StatusAux()

	return nil
}
