// Package i2ctest provides simulated hardware for exercising the i2c
// driver without a bus: a register-level controller double with
// attachable peer devices, open-drain line models for recovery, and a
// virtual clock. The doubles are exported so package tests and the
// console tool share them.
package i2ctest

import "time"

// SimClock is a virtual clock: Sleep advances time instead of waiting.
// Not safe for concurrent use; the driver's cooperative environment is
// single-threaded per port.
type SimClock struct {
	t time.Time

	// Slept accumulates total simulated sleep, for timing assertions.
	Slept time.Duration
}

func NewSimClock() *SimClock {
	return &SimClock{t: time.Unix(0, 0)}
}

func (c *SimClock) Now() time.Time { return c.t }

func (c *SimClock) Sleep(d time.Duration) {
	c.t = c.t.Add(d)
	c.Slept += d
}
