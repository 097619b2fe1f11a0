package i2c

import (
	"time"

	"i2cmaster-go/errcode"
)

// Flags select which bus conditions frame a Transfer call.
type Flags uint8

const (
	// FlagStart issues a start condition before the first phase. Omit it
	// for the middle or tail of a chain whose start is already active.
	FlagStart Flags = 1 << 0
	// FlagStop queues a stop condition after the last phase.
	FlagStop Flags = 1 << 1

	// FlagSingle frames one complete standalone transaction.
	FlagSingle = FlagStart | FlagStop
)

const (
	// Stop settle: up to ten polls for bus-busy to clear, then one
	// unconditional interval so peers can observe bus-idle before the
	// next start (one bit time at 100 kHz).
	stopPolls        = 10
	stopPollInterval = 10 * time.Microsecond
	busIdleSettle    = 10 * time.Microsecond
)

// Transfer executes one transaction (or one segment of a chained
// transaction) against the peripheral at addr: an optional write phase
// from w, then an optional read phase into r, with a repeated start
// between the phases. addr is the 8-bit base address; its LSB is
// replaced with the direction bit per phase.
//
// The caller must hold the port lock, and keep holding it across every
// segment of a chain. On failure a stop is always queued so the bus is
// not left mid-transaction for the next caller; a FailedStart failure
// additionally reinitializes the port (forced recovery plus timing
// reprogram) before the error is returned.
func (p *Port) Transfer(addr uint8, w, r []byte, flags Flags) error {
	regs := p.cfg.Regs
	stopQueued := false

	// Enter a known state: drop stale status and any leftover
	// start/stop/pos/ack control bits.
	regs.ClearStatus()
	regs.SetControl(regs.Control() &^ (CtrlStart | CtrlStop | CtrlPos | CtrlAck))

	rv := p.runPhases(addr, w, r, flags, &stopQueued)

	if rv != nil {
		// Never leave the bus claimed: queue a stop regardless of the
		// caller's flags.
		regs.SetControl(regs.Control() | CtrlStop)
		stopQueued = true

		// A failed start is the primary symptom of a wedged bus. Reset
		// the port here so the next transaction stands a chance; the
		// current one still fails.
		if errcode.Of(rv) == errcode.FailedStart {
			p.d.logf("i2c%d: start failed; resetting port to unwedge", p.cfg.ID)
			p.initPort(true)
		}
	}

	if stopQueued {
		for i := 0; i < stopPolls; i++ {
			if regs.StatusAux()&AuxBusy == 0 {
				break
			}
			p.d.clk.Sleep(stopPollInterval)
		}
		p.d.clk.Sleep(busIdleSettle)

		if rv != nil {
			// Drop leftover fault bits so they cannot bleed into the
			// next transaction's status polls.
			regs.ClearStatus()
		}
	}

	return rv
}

// runPhases is the write-then-read body of a transfer. It reports
// through stopQueued whether a stop condition was queued on the success
// path, so the caller can wait out the stop settle.
func (p *Port) runPhases(addr uint8, w, r []byte, flags Flags, stopQueued *bool) error {
	regs := p.cfg.Regs
	started := flags&FlagStart == 0

	// A transfer with no read phase still runs the write phase, even
	// with zero bytes: start+address alone probes the peripheral.
	if len(w) > 0 || len(r) == 0 {
		if !started {
			if err := p.sendStart(addr &^ 1); err != nil {
				return err
			}
		}

		for _, b := range w {
			regs.WriteData(b)
			if err := p.waitStatus(StatusByteDone); err != nil {
				return err
			}
		}

		// A read phase needs its own repeated start.
		started = false

		if len(r) == 0 && flags&FlagStop != 0 {
			regs.SetControl(regs.Control() | CtrlStop)
			*stopQueued = true
		}
	}

	if len(r) == 0 {
		return nil
	}

	// The acknowledge controls must be programmed from the total read
	// length before the repeated start; the controller latches them at
	// the restart. Two bytes needs the position bit, three or more need
	// acknowledge enabled, a single byte needs neither.
	switch {
	case len(r) == 2:
		regs.SetControl(regs.Control() | CtrlPos)
	case len(r) > 2:
		regs.SetControl(regs.Control() | CtrlAck)
	}

	if !started {
		if err := p.sendStart(addr | 1); err != nil {
			return err
		}
	}

	switch len(r) {
	case 1:
		// Queue the stop before the only byte arrives.
		if flags&FlagStop != 0 {
			regs.SetControl(regs.Control() | CtrlStop)
			*stopQueued = true
		}
		if err := p.waitStatus(StatusRxReady); err != nil {
			return err
		}
		r[0] = regs.ReadData()

	case 2:
		// Wait until both pipeline stages hold data, then drain them
		// back to back with no waits in between.
		if err := p.waitStatus(StatusByteDone); err != nil {
			return err
		}
		if flags&FlagStop != 0 {
			regs.SetControl(regs.Control() | CtrlStop)
			*stopQueued = true
		}
		r[0] = regs.ReadData()
		r[1] = regs.ReadData()

	default:
		// Read all but the last three one at a time.
		i := 0
		for ; i < len(r)-3; i++ {
			if err := p.waitStatus(StatusRxReady); err != nil {
				return err
			}
			r[i] = regs.ReadData()
		}

		// Byte N-2 in the data register, N-1 in the shift register.
		if err := p.waitStatus(StatusByteDone); err != nil {
			return err
		}

		// Stop acknowledging so the peripheral releases the bus after
		// the final byte.
		regs.SetControl(regs.Control() &^ CtrlAck)
		r[i] = regs.ReadData()
		i++

		// Byte N-1 in the data register, N in the shift register.
		if err := p.waitStatus(StatusByteDone); err != nil {
			return err
		}

		if flags&FlagStop != 0 {
			regs.SetControl(regs.Control() | CtrlStop)
			*stopQueued = true
		}
		r[i] = regs.ReadData()
		i++
		r[i] = regs.ReadData()
	}

	return nil
}
