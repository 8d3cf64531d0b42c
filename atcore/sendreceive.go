package atcore

import "time"

// srCallback signals srMatched when invoked; it is the trivial
// no-argument handler installed for the expected-response prefix,
// dispatched by the consume loop exactly like any other handler, after
// the handler mutex has been released.
type srCallback struct {
	fire func()
}

func (c srCallback) Handle(line []byte) {
	c.fire()
}

// SendReceive implements the one-shot synchronous request coordinator:
// register expected as a temporary ordinary entry (appended, so URCs
// installed with RegisterURC still take precedence and keep firing for
// unsolicited lines delivered while this request is outstanding),
// transmit cmd, wait for a matching line or timeout, then clean up.
//
// out is filled with every line received while the request is
// outstanding (including the matching line itself), concatenated and
// truncated to cap-1 bytes, always null-terminated. Returns ErrBusy if
// a send-receive is already in flight, ErrInternal if the handler table
// is full, ErrBusy/ErrSendFail/ErrTimeout/ErrInvalidArg as propagated
// from Send, ErrTimeout if no matching line arrived within timeout, or
// nil on a match within timeout. ErrTimeout is the same sentinel in
// both cases, so it does not tell a missed TX-complete apart from a
// missing reply.
func (d *Dispatcher) SendReceive(cmd string, expected string, out []byte, timeout time.Duration) error {
	if len(out) == 0 {
		return ErrInvalidArg
	}

	if err := d.armSendReceive(expected, out); err != nil {
		return err
	}

	sendErr := d.Send(cmd)
	if sendErr != nil {
		d.disarmSendReceive(expected)
		return sendErr
	}

	var result error
	select {
	case <-d.srMatched:
		result = nil
	case <-time.After(timeout):
		result = ErrTimeout
	}

	d.disarmSendReceive(expected)
	return result
}

func (d *Dispatcher) armSendReceive(expected string, out []byte) error {
	d.handlerMu.Lock()
	defer d.handlerMu.Unlock()

	if d.sr.active {
		return ErrBusy
	}

	out[0] = 0
	d.sr = srSlot{active: true, out: out, cap: len(out), len: 0}

	cb := srCallback{fire: d.notifySRMatched}
	if err := d.table.register([]byte(expected), cb); err != nil {
		d.sr = srSlot{}
		return wrapf(ErrInternal, "register expected prefix: %v", err)
	}

	// Drain any pending signal from a previous, already timed-out
	// send-receive.
	select {
	case <-d.srMatched:
	default:
	}

	return nil
}

func (d *Dispatcher) disarmSendReceive(expected string) {
	d.handlerMu.Lock()
	defer d.handlerMu.Unlock()

	_ = d.table.unregister([]byte(expected))
	d.sr = srSlot{}
}

func (d *Dispatcher) notifySRMatched() {
	select {
	case d.srMatched <- struct{}{}:
	default:
	}
}
