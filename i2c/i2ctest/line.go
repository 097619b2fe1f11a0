package i2ctest

// SimLine models one open-drain bus line. The resolved level is high
// unless the driver side or an attached holder pulls it low. Holder and
// edge hook let tests model a wedged or clock-stretching peer.
type SimLine struct {
	// HeldLow, when non-nil, reports whether a peer is holding the line
	// low right now.
	HeldLow func() bool

	// OnFall / OnRise run on resolved falling / rising edges caused by
	// the driver side; OnSet runs on every driver-side Set.
	OnFall func()
	OnRise func()
	OnSet  func(level bool)

	drvLow     bool
	Configured int // ConfigureOpenDrain call count
	SetCalls   int
}

// NewSimLine returns a released (idle-high) line.
func NewSimLine() *SimLine { return &SimLine{} }

func (l *SimLine) ConfigureOpenDrain() error {
	l.Configured++
	l.drvLow = false
	return nil
}

func (l *SimLine) Get() bool {
	if l.drvLow {
		return false
	}
	if l.HeldLow != nil && l.HeldLow() {
		return false
	}
	return true
}

func (l *SimLine) Set(level bool) {
	l.SetCalls++
	if l.OnSet != nil {
		l.OnSet(level)
	}
	before := l.Get()
	l.drvLow = !level
	after := l.Get()
	if before && !after && l.OnFall != nil {
		l.OnFall()
	}
	if !before && after && l.OnRise != nil {
		l.OnRise()
	}
}

// WedgedPeer models a peripheral stuck mid-transaction, holding the
// data line low until it has seen enough clock pulses to reach a byte
// boundary. ReleaseAfter <= 0 means it never lets go.
type WedgedPeer struct {
	ReleaseAfter int // falling SCL edges until SDA is released

	Pulses int // falling edges observed
}

// Wedge attaches the peer to a pair of simulated lines: SDA reads low
// until the peer releases, and each driver-side falling edge on SCL
// counts as one recovery pulse.
func (w *WedgedPeer) Wedge(scl, sda *SimLine) {
	sda.HeldLow = func() bool {
		return w.ReleaseAfter <= 0 || w.Pulses < w.ReleaseAfter
	}
	scl.OnFall = func() { w.Pulses++ }
}

// StretchPeer models a peripheral stretching the clock: SCL reads low
// until the driver has tried to release it ReleaseAfter times.
// ReleaseAfter <= 0 never releases.
type StretchPeer struct {
	ReleaseAfter int

	attempts int
}

func (s *StretchPeer) Stretch(scl *SimLine) {
	scl.HeldLow = func() bool {
		return s.ReleaseAfter <= 0 || s.attempts < s.ReleaseAfter
	}
	scl.OnSet = func(level bool) {
		if level {
			s.attempts++
		}
	}
}
