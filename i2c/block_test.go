package i2c_test

import (
	"bytes"
	"testing"

	"i2cmaster-go/errcode"
	"i2cmaster-go/i2c"
	"i2cmaster-go/i2c/i2ctest"
)

func TestReadBlock_RejectsBadLengths(t *testing.T) {
	peer := i2ctest.NewMemPeer(devAddr)
	b := i2ctest.NewBench(peer)

	if err := b.Port.ReadBlock(devAddr8, 0x10, nil); errcode.Of(err) != errcode.InvalidArgument {
		t.Fatalf("len 0: want InvalidArgument, got %v", err)
	}
	if err := b.Port.ReadBlock(devAddr8, 0x10, make([]byte, 33)); errcode.Of(err) != errcode.InvalidArgument {
		t.Fatalf("len 33: want InvalidArgument, got %v", err)
	}
	// Rejection happens before any bus activity.
	if len(b.Ctrl.Journal) != 0 {
		t.Fatalf("invalid length still touched the bus: %d control writes", len(b.Ctrl.Journal))
	}
}

func TestReadBlock_TruncatesDeclaredLength(t *testing.T) {
	peer := i2ctest.NewMemPeer(devAddr)
	// Peer declares 15 bytes at register 0x10.
	peer.Load(0x10, append([]byte{15}, []byte("abcdefghijklmno")...))
	b := i2ctest.NewBench(peer)

	buf := make([]byte, 10)
	if err := b.Port.ReadBlock(devAddr8, 0x10, buf); err != nil {
		t.Fatalf("read block: %v", err)
	}
	if !bytes.Equal(buf[:9], []byte("abcdefghi")) {
		t.Fatalf("truncated data got %q", buf[:9])
	}
	if buf[9] != 0 {
		t.Fatalf("missing terminator at index 9: %v", buf)
	}
}

func TestReadBlock_ShortDeclaredLength(t *testing.T) {
	peer := i2ctest.NewMemPeer(devAddr)
	peer.Load(0x30, append([]byte{3}, []byte("xyz")...))
	b := i2ctest.NewBench(peer)

	buf := make([]byte, 16)
	if err := b.Port.ReadBlock(devAddr8, 0x30, buf); err != nil {
		t.Fatalf("read block: %v", err)
	}
	if !bytes.Equal(buf[:4], []byte("xyz\x00")) {
		t.Fatalf("got %q", buf[:4])
	}
}

func TestReadBlock_RoundTrip(t *testing.T) {
	peer := i2ctest.NewMemPeer(devAddr)
	b := i2ctest.NewBench(peer)

	// Write a counted block at register 0x10, then read it back.
	b.Port.Lock()
	err := b.Port.Transfer(devAddr8, []byte{0x10, 3, 'a', 'b', 'c'}, nil, i2c.FlagSingle)
	b.Port.Unlock()
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]byte, 8)
	if err := b.Port.ReadBlock(devAddr8, 0x10, buf); err != nil {
		t.Fatalf("read block: %v", err)
	}
	if !bytes.Equal(buf[:4], []byte("abc\x00")) {
		t.Fatalf("round trip got %q", buf[:4])
	}
}
