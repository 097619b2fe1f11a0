package i2c

import "tinygo.org/x/drivers"

// Tx implements drivers.I2C, so device drivers written against
// tinygo.org/x/drivers run unchanged over this core. addr is the plain
// 7-bit address; w then r execute as one combined transaction with a
// repeated start between the phases. The port lock is taken internally,
// so Tx calls from different device drivers interleave safely.
func (p *Port) Tx(addr uint16, w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Transfer(uint8(addr)<<1, w, r, FlagSingle)
}

var _ drivers.I2C = (*Port)(nil)
