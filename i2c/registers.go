// Package i2c implements the master-mode half of a polled I2C bus
// controller: byte-level write/read transactions against an addressed
// peripheral, bit-banged recovery of a wedged bus, and bit-rate divider
// reprogramming when the controller's input clock changes.
//
// The hardware itself is reached through small capability interfaces
// (Registers for the per-port register file, Line for the two recovery
// pins, Clock for time) so the protocol state machine is testable on
// simulated hardware.
package i2c

// Control is the per-port control word.
type Control uint16

const (
	CtrlEnable Control = 1 << 0 // peripheral enable
	CtrlStart  Control = 1 << 8 // generate start condition
	CtrlStop   Control = 1 << 9 // generate stop condition
	CtrlAck    Control = 1 << 10
	CtrlPos    Control = 1 << 11 // ack/nack applies to the next shift byte
	CtrlReset  Control = 1 << 15 // software reset, held while set
)

// Status is the primary status word. A value is a snapshot of the
// controller's state at one read; it is never stored.
type Status uint16

const (
	StatusStartSent Status = 1 << 0 // start condition generated
	StatusAddrAcked Status = 1 << 1 // address sent and acknowledged
	StatusByteDone  Status = 1 << 2 // shift and data registers both occupied
	StatusRxReady   Status = 1 << 6 // data register holds a received byte
	StatusBusError  Status = 1 << 8
	StatusArbLost   Status = 1 << 9
	StatusNack      Status = 1 << 10
)

// statusErrors are the three terminal fault bits checked by the poller.
const statusErrors = StatusBusError | StatusArbLost | StatusNack

// AuxStatus is the secondary status word.
type AuxStatus uint16

const (
	AuxBusy AuxStatus = 1 << 1 // a transfer is in progress on the bus
)

// Registers is one port's register file. Reading StatusAux has the
// hardware side effect of clearing the address-acknowledged condition,
// mirroring the controller's SR2-read handshake.
type Registers interface {
	Control() Control
	SetControl(Control)

	Status() Status
	ClearStatus()
	StatusAux() AuxStatus

	WriteData(byte)
	ReadData() byte

	// Timing registers, programmed while the port is disabled.
	SetBitRateDiv(uint32)
	SetInputFreqMHz(uint32)
	SetRiseTime(uint32)
}

// Line is one of the two bus pins, used only during recovery and for
// line-level diagnostics. Outputs are open-drain: Set(false) drives the
// line low, Set(true) releases it.
type Line interface {
	// ConfigureOpenDrain switches the pin to an open-drain output,
	// released (reading high unless a peer holds it low).
	ConfigureOpenDrain() error
	Set(level bool)
	Get() bool
}

// LineLevels is the instantaneous electrical state of both lines.
type LineLevels uint8

const (
	LineSDAHigh LineLevels = 1 << 0
	LineSCLHigh LineLevels = 1 << 1
)

func (l LineLevels) Idle() bool { return l == LineSDAHigh|LineSCLHigh }
