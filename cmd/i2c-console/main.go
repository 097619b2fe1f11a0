// cmd/i2c-console/main.go
//
// Interactive console for poking the i2c driver over a simulated
// two-port bus: each port has a 256-byte memory device at 0x50.
//
//	write <port> <addr> <byte>...   register write (first byte = offset)
//	read <port> <addr> <n>          read n bytes
//	block <port> <addr> <off> <n>   SMBus-style block read
//	levels <port>                   line levels
//	unwedge <port> [force]          run bus recovery
//	freq <hz>                       change the input clock
//	status <port>                   divider registers and bus state
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"i2cmaster-go/hooks"
	"i2cmaster-go/i2c"
	"i2cmaster-go/i2c/i2ctest"
)

type simPort struct {
	ctrl *i2ctest.Controller
	scl  *i2ctest.SimLine
	sda  *i2ctest.SimLine
	peer *i2ctest.MemPeer
}

func main() {
	inputHz := uint32(16_000_000)

	var ports []i2c.PortConfig
	sims := map[int]*simPort{}
	for id := 0; id < 2; id++ {
		peer := i2ctest.NewMemPeer(0x50)
		for i := range peer.Mem {
			peer.Mem[i] = byte(i)
		}
		sp := &simPort{
			ctrl: i2ctest.NewController(peer),
			scl:  i2ctest.NewSimLine(),
			sda:  i2ctest.NewSimLine(),
			peer: peer,
		}
		sims[id] = sp
		ports = append(ports, i2c.PortConfig{
			ID: id, KBps: 100, SCL: sp.scl, SDA: sp.sda, Regs: sp.ctrl,
		})
	}

	drv, err := i2c.New(i2c.Config{
		Ports:   ports,
		InputHz: func() uint32 { return inputHz },
		Logf: func(format string, args ...any) {
			fmt.Printf("[i2c] "+format+"\n", args...)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "setup:", err)
		os.Exit(1)
	}

	n := hooks.New()
	hooks.Bind(n, drv)
	n.Register(hooks.StagePreFreqChange, func(e hooks.Event) { inputHz = e.Hz })
	n.Publish(hooks.Event{Stage: hooks.StageInit})

	fmt.Println("i2c console; two simulated ports, memory device at 0x50. Ctrl-D quits.")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		args, err := shlex.Split(sc.Text())
		if err != nil {
			fmt.Println("parse:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if err := run(drv, sims, n, args); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func run(drv *i2c.Driver, sims map[int]*simPort, n *hooks.Notifier, args []string) error {
	cmd, args := args[0], args[1:]

	if cmd == "freq" {
		if len(args) != 1 {
			return fmt.Errorf("usage: freq <hz>")
		}
		hz, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return err
		}
		n.NotifyFreqChange(uint32(hz))
		fmt.Printf("input clock now %d Hz\n", hz)
		return nil
	}

	if len(args) < 1 {
		return fmt.Errorf("usage: %s <port> ...", cmd)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	p, ok := drv.Port(id)
	if !ok {
		return fmt.Errorf("no port %d", id)
	}
	sim := sims[id]
	args = args[1:]

	switch cmd {
	case "write":
		addr, data, err := addrAndBytes(args)
		if err != nil {
			return err
		}
		p.Lock()
		defer p.Unlock()
		return p.Transfer(addr<<1, data, nil, i2c.FlagSingle)

	case "read":
		if len(args) != 2 {
			return fmt.Errorf("usage: read <port> <addr> <n>")
		}
		addr, err := parseByte(args[0])
		if err != nil {
			return err
		}
		cnt, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		buf := make([]byte, cnt)
		p.Lock()
		defer p.Unlock()
		if err := p.Transfer(addr<<1, nil, buf, i2c.FlagSingle); err != nil {
			return err
		}
		fmt.Printf("% x\n", buf)
		return nil

	case "block":
		if len(args) != 3 {
			return fmt.Errorf("usage: block <port> <addr> <offset> <maxlen>")
		}
		addr, err := parseByte(args[0])
		if err != nil {
			return err
		}
		off, err := parseByte(args[1])
		if err != nil {
			return err
		}
		maxLen, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		buf := make([]byte, maxLen)
		if err := p.ReadBlock(addr<<1, off, buf); err != nil {
			return err
		}
		fmt.Printf("%q\n", strings.TrimRight(string(buf), "\x00"))
		return nil

	case "levels":
		l := p.LineLevels()
		fmt.Printf("scl=%d sda=%d\n", bit(l&i2c.LineSCLHigh != 0), bit(l&i2c.LineSDAHigh != 0))
		return nil

	case "unwedge":
		force := len(args) == 1 && args[0] == "force"
		p.Lock()
		defer p.Unlock()
		return p.Recover(force)

	case "status":
		fmt.Printf("busy=%v div=%d freq=%dMHz trise=%d resets=%d control-writes=%d\n",
			sim.ctrl.Busy(), sim.ctrl.BitRateDiv, sim.ctrl.InputMHz,
			sim.ctrl.RiseTime, sim.ctrl.Resets, len(sim.ctrl.Journal))
		return nil
	}

	return fmt.Errorf("unknown command %q", cmd)
}

func addrAndBytes(args []string) (uint8, []byte, error) {
	if len(args) < 2 {
		return 0, nil, fmt.Errorf("need <addr> and at least one byte")
	}
	addr, err := parseByte(args[0])
	if err != nil {
		return 0, nil, err
	}
	var data []byte
	for _, a := range args[1:] {
		b, err := parseByte(a)
		if err != nil {
			return 0, nil, err
		}
		data = append(data, b)
	}
	return addr, data, nil
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	return uint8(v), err
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
