package i2c

import (
	"i2cmaster-go/errcode"
	"i2cmaster-go/x/mathx"
)

// MaxBlock is the largest SMBus block transfer.
const MaxBlock = 32

// ReadBlock performs a length-prefixed block read from the register at
// offset: a combined write(offset)+read(len(buf)) transaction whose
// first returned byte declares how many valid bytes follow. The
// declared length is clamped to len(buf)-1, the data is shifted down
// over the length byte, and the result is null-terminated.
//
// len(buf) must be in (0, MaxBlock]. The port lock is held for the
// whole operation.
func (p *Port) ReadBlock(addr, offset uint8, buf []byte) error {
	if len(buf) == 0 || len(buf) > MaxBlock {
		return &errcode.E{C: errcode.InvalidArgument, Op: "i2c.ReadBlock", Msg: "length outside (0,32]"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	reg := [1]byte{offset}
	if err := p.Transfer(addr, reg[:], buf, FlagSingle); err != nil {
		return err
	}

	// First byte is the peer-declared block length.
	n := mathx.Min(int(buf[0]), len(buf)-1)
	copy(buf, buf[1:1+n])
	buf[n] = 0

	return nil
}
