package i2ctest

// Peer is a device attached to a simulated controller. The controller
// calls Start at each (repeated) start condition addressed to the peer,
// Write/Read per data byte, and Stop when the transaction ends.
type Peer interface {
	Addr() uint8 // 7-bit address
	Start(read bool) bool
	Write(b byte) bool // returns ack
	Read() byte
	Stop()
}

// MemPeer is a register-addressed 256-byte memory device: the first
// written byte of a transaction sets the register pointer, subsequent
// writes store through it, reads stream from it. This is the shape of
// most small I2C peripherals (EEPROMs, sensors, SMBus block devices).
type MemPeer struct {
	Address uint8
	Mem     [256]byte

	// NackAfter, when >= 0, NACKs the data byte with that index within
	// the current write phase.
	NackAfter int

	ptr      uint8
	haveReg  bool
	writeIdx int
	stops    int
}

func NewMemPeer(addr uint8) *MemPeer {
	return &MemPeer{Address: addr, NackAfter: -1}
}

func (m *MemPeer) Addr() uint8 { return m.Address }

func (m *MemPeer) Start(read bool) bool {
	if !read {
		m.haveReg = false
	}
	m.writeIdx = 0
	return true
}

func (m *MemPeer) Write(b byte) bool {
	if m.NackAfter >= 0 && m.writeIdx == m.NackAfter {
		return false
	}
	m.writeIdx++
	if !m.haveReg {
		m.ptr = b
		m.haveReg = true
		return true
	}
	m.Mem[m.ptr] = b
	m.ptr++
	return true
}

func (m *MemPeer) Read() byte {
	b := m.Mem[m.ptr]
	m.ptr++
	return b
}

func (m *MemPeer) Stop() { m.stops++ }

// Stops reports how many stop conditions the peer has observed.
func (m *MemPeer) Stops() int { return m.stops }

// Load copies data into memory starting at reg.
func (m *MemPeer) Load(reg uint8, data []byte) {
	copy(m.Mem[reg:], data)
}
