package atcore

import "time"

// Send serializes an outbound write: it appends the configured
// line terminator, hands the result to the platform's transmit path and
// waits for completion. Acquires the transmit mutex with a 500ms cap
// (Config.MutexTimeout); returns ErrBusy on failure. Returns
// ErrInvalidArg if cmd plus the terminator does not fit in the
// configured transmit scratch buffer, ErrSendFail if the platform
// rejects the write immediately, ErrTimeout if TX-complete does not
// fire within Config.TXTimeout (default 1000ms).
//
// Grounded on usbarmory-tamago/soc/imx6/uart.go's Tx/Write pair
// (format-then-drain discipline), generalized from busy-polling a
// hardware FIFO to waiting on a completion channel, since this core
// targets a DMA+interrupt peripheral rather than a polled UART.
func (d *Dispatcher) Send(cmd string) error {
	if !d.txMu.TryLock(d.cfg.MutexTimeout) {
		return ErrBusy
	}
	defer d.txMu.Unlock()

	need := len(cmd) + len(d.cfg.LineTerminator)
	if need > len(d.txScratch) {
		return ErrInvalidArg
	}

	n := copy(d.txScratch, cmd)
	n += copy(d.txScratch[n:], d.cfg.LineTerminator)
	frame := d.txScratch[:n]

	// Drain any stale completion signal from a previous, already
	// timed-out transmit before arming a new wait.
	select {
	case <-d.txDone:
	default:
	}

	if err := d.platform.StartTransmit(frame, d.notifyTXDone); err != nil {
		return wrapf(ErrSendFail, "start transmit: %v", err)
	}

	if d.digest != nil {
		d.digest.observe(frame)
	}

	select {
	case <-d.txDone:
		return nil
	case <-time.After(d.cfg.TXTimeout):
		return ErrTimeout
	}
}
