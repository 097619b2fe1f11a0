package i2c

// SetFreq reprograms the port's bus timing from the controller's
// current input clock and the port's target bit rate. The port is held
// in reset while the dividers change and re-enabled afterwards.
//
// Call with the port lock held; the frequency-change hooks take every
// port's lock before touching any divider.
func (p *Port) SetFreq() {
	regs := p.cfg.Regs
	hz := p.d.inputHz()

	// Force a peripheral reset pulse, then disable the port.
	regs.SetControl(CtrlReset)
	regs.SetControl(0)

	// Bit-rate divider, input clock in MHz, and analog rise-time
	// compensation (input period count plus one).
	regs.SetBitRateDiv(hz / (2_000 * p.cfg.KBps))
	regs.SetInputFreqMHz(hz / 1_000_000)
	regs.SetRiseTime(hz/1_000_000 + 1)

	regs.SetControl(regs.Control() | CtrlEnable)
}
