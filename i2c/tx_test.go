package i2c_test

import (
	"bytes"
	"testing"

	"tinygo.org/x/drivers"

	"i2cmaster-go/i2c/i2ctest"
)

func TestTx_DriversI2CAdapter(t *testing.T) {
	peer := i2ctest.NewMemPeer(devAddr)
	peer.Load(0x08, []byte{0xDE, 0xAD})
	b := i2ctest.NewBench(peer)

	var bus drivers.I2C = b.Port

	r := make([]byte, 2)
	if err := bus.Tx(devAddr, []byte{0x08}, r); err != nil {
		t.Fatalf("Tx: %v", err)
	}
	if !bytes.Equal(r, []byte{0xDE, 0xAD}) {
		t.Fatalf("Tx read %x", r)
	}

	// Write-only call.
	if err := bus.Tx(devAddr, []byte{0x08, 0x55}, nil); err != nil {
		t.Fatalf("Tx write: %v", err)
	}
	if peer.Mem[0x08] != 0x55 {
		t.Fatalf("write did not land: %02x", peer.Mem[0x08])
	}
}
