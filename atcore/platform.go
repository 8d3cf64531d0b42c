package atcore

// Platform is the small capability interface the core consumes from the
// physical serial peripheral driver, the DMA controller and the
// interrupt vector configuration — all deliberately outside this
// module's scope. An implementation lives in platform/hostuart for
// hosted (Linux tty/pty) targets; a bare-metal target wires the same
// interface to a UART+DMA block (soc/imx6/uart.go is the register-level
// driver such an implementation would sit on top of).
//
// No method here may block: the core calls them from New, Reset,
// HandleIdleLine and Send, none of which allow for the platform to
// suspend the caller indefinitely.
type Platform interface {
	// StartReceive begins continuous reception into buf, a caller-
	// owned buffer of capacity D that the DMA controller (or its
	// software stand-in) fills asynchronously. Must not block.
	StartReceive(buf []byte) error

	// RemainingCount returns the DMA controller's remaining-count
	// register: the number of bytes still free before the write
	// cursor wraps. Must not block.
	RemainingCount() uint32

	// StartTransmit hands data to the platform's transmit path. done
	// must be invoked exactly once, from whatever context the
	// platform's TX-complete interrupt fires in, when the write
	// completes. StartTransmit itself must not block; it reports
	// only immediate rejection (e.g. peripheral busy) via its error
	// return.
	StartTransmit(data []byte, done func()) error

	// AbortTX aborts any in-flight transmit, used by Reset.
	AbortTX() error

	// AbortRX aborts any in-flight receive, used by Reset.
	AbortRX() error
}
