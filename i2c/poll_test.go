package i2c

import (
	"testing"
	"time"

	"i2cmaster-go/errcode"
)

// stubRegs is a minimal register file for poller-level tests; the full
// behavioural double lives in i2ctest.
type stubRegs struct {
	st Status
	// afterPolls, when > 0, sets wanted into st once that many Status
	// reads have happened.
	afterPolls int
	wanted     Status
	reads      int

	ctrl Control
}

func (s *stubRegs) Control() Control     { return s.ctrl }
func (s *stubRegs) SetControl(v Control) { s.ctrl = v }
func (s *stubRegs) Status() Status {
	s.reads++
	if s.afterPolls > 0 && s.reads >= s.afterPolls {
		s.st |= s.wanted
	}
	return s.st
}
func (s *stubRegs) ClearStatus()           { s.st = 0 }
func (s *stubRegs) StatusAux() AuxStatus   { return 0 }
func (s *stubRegs) WriteData(byte)         {}
func (s *stubRegs) ReadData() byte         { return 0 }
func (s *stubRegs) SetBitRateDiv(uint32)   {}
func (s *stubRegs) SetInputFreqMHz(uint32) {}
func (s *stubRegs) SetRiseTime(uint32)     {}

type stubLine struct{}

func (stubLine) ConfigureOpenDrain() error { return nil }
func (stubLine) Set(bool)                  {}
func (stubLine) Get() bool                 { return true }

type stubClock struct {
	t     time.Time
	slept time.Duration
}

func (c *stubClock) Now() time.Time { return c.t }
func (c *stubClock) Sleep(d time.Duration) {
	c.t = c.t.Add(d)
	c.slept += d
}

func newStubPort(t *testing.T, regs Registers) (*Port, *stubClock) {
	t.Helper()
	clk := &stubClock{}
	d, err := New(Config{
		Ports:   []PortConfig{{ID: 1, KBps: 100, SCL: stubLine{}, SDA: stubLine{}, Regs: regs}},
		InputHz: func() uint32 { return 8_000_000 },
		Clock:   clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p, _ := d.Port(1)
	return p, clk
}

func TestWaitStatus_SetBitsSucceed(t *testing.T) {
	regs := &stubRegs{afterPolls: 5, wanted: StatusByteDone}
	p, _ := newStubPort(t, regs)

	if err := p.waitStatus(StatusByteDone); err != nil {
		t.Fatalf("waitStatus: %v", err)
	}
	if regs.reads != 5 {
		t.Fatalf("polled %d times, want 5", regs.reads)
	}
}

func TestWaitStatus_TimeoutIsBoundedOnce(t *testing.T) {
	regs := &stubRegs{}
	p, clk := newStubPort(t, regs)

	if err := p.waitStatus(StatusByteDone); err != errcode.Timeout {
		t.Fatalf("want Timeout, got %v", err)
	}
	// The deadline is computed once at entry: total yield time equals
	// the timeout, regardless of per-iteration progress.
	if clk.slept != statusTimeout {
		t.Fatalf("slept %v, want %v", clk.slept, statusTimeout)
	}
}

func TestWaitStatus_ErrorFlagsBeatTimeout(t *testing.T) {
	for _, fault := range []Status{StatusArbLost, StatusBusError, StatusNack} {
		regs := &stubRegs{st: fault}
		p, clk := newStubPort(t, regs)

		if err := p.waitStatus(StatusByteDone); err != errcode.BusFault {
			t.Fatalf("fault %04x: want BusFault, got %v", uint16(fault), err)
		}
		if clk.slept != 0 {
			t.Fatalf("fault %04x: poller kept waiting after a fault", uint16(fault))
		}
	}
}

func TestWaitStatus_PartialMaskKeepsWaiting(t *testing.T) {
	regs := &stubRegs{st: StatusStartSent}
	p, _ := newStubPort(t, regs)

	err := p.waitStatus(StatusStartSent | StatusAddrAcked)
	if err != errcode.Timeout {
		t.Fatalf("partial mask: want Timeout, got %v", err)
	}
}

func TestSendStart_NeverCompletingStartIsFailedStart(t *testing.T) {
	regs := &stubRegs{}
	p, _ := newStubPort(t, regs)

	if err := p.sendStart(0xA0); err != errcode.FailedStart {
		t.Fatalf("want FailedStart, got %v", err)
	}
	if regs.ctrl&CtrlStart == 0 {
		t.Fatalf("start bit never requested")
	}
}

func TestSendStart_AddressFaultPropagates(t *testing.T) {
	// Start completes, then the address byte is NACKed.
	regs := &stubRegs{st: StatusStartSent | StatusNack}
	p, _ := newStubPort(t, regs)

	if err := p.sendStart(0xA0); err != errcode.BusFault {
		t.Fatalf("want BusFault, got %v", err)
	}
}
