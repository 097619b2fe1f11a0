package i2ctest

import "i2cmaster-go/i2c"

// Controller is a register-level double of one controller port. It
// models the two-deep receive pipeline (data register plus shift
// register), the acknowledge/position fetch rules, the busy flag, and
// the address handshake, all synchronously: a status condition is
// visible on the poll after the register write that caused it.
//
// Every SetControl is journalled so tests can assert the exact
// control-bit sequence the driver programs.
type Controller struct {
	// Fault injection.
	StartFails        bool // start condition never completes
	ArbLostAt         int  // write-phase byte index to lose arbitration on
	BusErrorAt        int  // write-phase byte index to raise a bus error on
	ResetClearsFaults bool // a reset pulse clears StartFails (wedge model)

	// Journal of control words, in write order.
	Journal []i2c.Control

	// Timing registers, as programmed by SetFreq.
	BitRateDiv uint32
	InputMHz   uint32
	RiseTime   uint32
	Resets     int

	peers []Peer

	control i2c.Control
	status  i2c.Status

	busy         bool
	active       Peer
	awaitingAddr bool
	addrCleared  bool
	reading      bool
	writeIdx     int

	dr        byte
	drFull    bool
	shift     byte
	shiftFull bool
	fetched   int
	nacked    bool // receiver has NACKed; no further fetches

	stopPending bool
}

func NewController(peers ...Peer) *Controller {
	return &Controller{ArbLostAt: -1, BusErrorAt: -1, peers: peers}
}

// Attach adds a peer device to the simulated bus.
func (c *Controller) Attach(p Peer) { c.peers = append(c.peers, p) }

// Busy reports whether a transaction is still claiming the bus.
func (c *Controller) Busy() bool { return c.busy }

var _ i2c.Registers = (*Controller)(nil)

func (c *Controller) Control() i2c.Control { return c.control }

func (c *Controller) SetControl(v i2c.Control) {
	c.Journal = append(c.Journal, v)

	rising := v &^ c.control
	c.control = v

	if rising&i2c.CtrlReset != 0 {
		c.Resets++
		c.busy = false
		c.active = nil
		c.awaitingAddr = false
		c.addrCleared = false
		c.reading = false
		c.drFull = false
		c.shiftFull = false
		c.stopPending = false
		if c.ResetClearsFaults {
			c.StartFails = false
		}
		c.status = 0
	}

	if rising&i2c.CtrlStart != 0 && c.control&i2c.CtrlReset == 0 {
		if !c.StartFails {
			c.status |= i2c.StatusStartSent
			c.busy = true
			c.awaitingAddr = true
			c.addrCleared = false
			c.reading = false
			c.drFull = false
			c.shiftFull = false
			c.fetched = 0
			c.nacked = false
			c.writeIdx = 0
			// The start bit is a pulse: hardware clears it once the
			// condition is on the wire.
			c.control &^= i2c.CtrlStart
		}
	}

	if rising&i2c.CtrlStop != 0 {
		c.stopPending = true
	}

	c.step()
}

func (c *Controller) Status() i2c.Status { return c.status }

func (c *Controller) ClearStatus() {
	c.status &= i2c.StatusStartSent | i2c.StatusAddrAcked
}

func (c *Controller) StatusAux() i2c.AuxStatus {
	// Reading the aux register completes the address handshake.
	if c.status&i2c.StatusAddrAcked != 0 {
		c.status &^= i2c.StatusAddrAcked
		c.addrCleared = true
		c.step()
	}
	if c.busy {
		return i2c.AuxBusy
	}
	return 0
}

func (c *Controller) WriteData(b byte) {
	if c.awaitingAddr {
		c.awaitingAddr = false
		c.status &^= i2c.StatusStartSent
		c.reading = b&1 != 0
		peer := c.findPeer(b >> 1)
		if peer == nil || !peer.Start(c.reading) {
			c.status |= i2c.StatusNack
			return
		}
		c.active = peer
		c.status |= i2c.StatusAddrAcked
		c.step()
		return
	}

	// Write-phase data byte.
	c.status &^= i2c.StatusByteDone
	switch {
	case c.writeIdx == c.ArbLostAt:
		c.status |= i2c.StatusArbLost
	case c.writeIdx == c.BusErrorAt:
		c.status |= i2c.StatusBusError
	case c.active == nil || !c.active.Write(b):
		c.status |= i2c.StatusNack
	default:
		c.status |= i2c.StatusByteDone
	}
	c.writeIdx++
	c.step()
}

func (c *Controller) ReadData() byte {
	b := c.dr
	c.drFull = false
	c.step()
	return b
}

func (c *Controller) SetBitRateDiv(v uint32)   { c.BitRateDiv = v }
func (c *Controller) SetInputFreqMHz(v uint32) { c.InputMHz = v }
func (c *Controller) SetRiseTime(v uint32)     { c.RiseTime = v }

func (c *Controller) findPeer(addr uint8) Peer {
	for _, p := range c.peers {
		if p.Addr() == addr {
			return p
		}
	}
	return nil
}

// step advances the pipeline and settles derived state after any
// register mutation.
func (c *Controller) step() {
	// Receive pipeline: fetch from the peer into the shift register,
	// promote shift into the data register. The first byte after the
	// address is always received; afterwards the acknowledge bit keeps
	// the stream going, and the position bit extends it to exactly two
	// bytes (ack the first, NACK the second).
	if c.reading && c.addrCleared && c.active != nil {
		for {
			if c.shiftFull && !c.drFull {
				c.dr = c.shift
				c.drFull = true
				c.shiftFull = false
				continue
			}
			if c.shiftFull || c.nacked {
				break
			}
			ack := c.control&i2c.CtrlAck != 0
			if c.control&i2c.CtrlPos != 0 && c.fetched == 0 {
				ack = true
			}
			c.shift = c.active.Read()
			c.shiftFull = true
			c.fetched++
			if !ack {
				c.nacked = true
			}
		}
		if c.drFull {
			c.status |= i2c.StatusRxReady
		} else {
			c.status &^= i2c.StatusRxReady
		}
		if c.drFull && c.shiftFull {
			c.status |= i2c.StatusByteDone
		} else {
			c.status &^= i2c.StatusByteDone
		}
	}

	// A queued stop takes effect once nothing is left in flight.
	if c.stopPending {
		drained := !c.drFull && !c.shiftFull
		receiving := c.reading && !c.nacked
		if c.active == nil {
			// Stop with no addressed peer (e.g. after an address NACK
			// or a failed start): the bus just goes idle.
			c.stopPending = false
			c.busy = false
			c.control &^= i2c.CtrlStop
		} else if drained && !receiving && !c.awaitingAddr {
			c.endTransaction()
		}
	}
}

func (c *Controller) endTransaction() {
	if c.active != nil {
		c.active.Stop()
	}
	c.active = nil
	c.busy = false
	c.reading = false
	c.addrCleared = false
	c.stopPending = false
	c.control &^= i2c.CtrlStart | i2c.CtrlStop
	c.status &^= i2c.StatusStartSent | i2c.StatusRxReady | i2c.StatusByteDone
}
