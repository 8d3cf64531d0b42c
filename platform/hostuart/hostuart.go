// Package hostuart implements atcore.Platform over a real Linux tty or
// pty, so the dispatcher can be exercised against an actual cellular
// modem (or a pty-based simulator) without a microcontroller.
//
// There is no DMA controller and no idle-line interrupt on a host tty.
// A reader goroutine plays the role of the RX-complete ISR: each run of
// bytes is handed to the receive callback (normally PushFromISR) as
// soon as it is read. There is no idle-line step; IdleTimeout only
// bounds each poll so the loop notices AbortRX.
//
// Grounded on Daedaluz-goserial/port_linux.go's termios2/ioctl
// discipline, rewritten against golang.org/x/sys/unix instead of a
// bespoke ioctl wrapper, and against unix.Poll instead of a dedicated
// epoll package.
package hostuart

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Config selects the serial line discipline. Baud must be one of the
// unix.B* constants (e.g. unix.B115200).
type Config struct {
	Path        string
	Baud        uint32
	IdleTimeout time.Duration
}

// DefaultIdleTimeout is the read loop's poll timeout used when
// Config.IdleTimeout is zero.
const DefaultIdleTimeout = 20 * time.Millisecond

// UART adapts a Linux tty/pty to atcore.Platform.
type UART struct {
	fd  int
	cfg Config

	mu        sync.Mutex
	rxBuf     []byte
	onReceive func([]byte)
	rxAbort   chan struct{}
	closed    bool
}

// Open opens path, puts the line into raw mode at the requested baud,
// and returns a UART ready to be passed to atcore.New.
func Open(cfg Config) (*UART, error) {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}

	fd, err := unix.Open(cfg.Path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("hostuart: open %s: %w", cfg.Path, err)
	}

	term, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("hostuart: get termios: %w", err)
	}

	makeRaw(term)
	if cfg.Baud != 0 {
		term.Cflag &^= unix.CBAUD
		term.Cflag |= cfg.Baud
		term.Ispeed = cfg.Baud
		term.Ospeed = cfg.Baud
	}

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, term); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("hostuart: set termios: %w", err)
	}

	return &UART{
		fd:  fd,
		cfg: cfg,
	}, nil
}

func makeRaw(t *unix.Termios) {
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
}

// StartReceive begins the background read loop. buf is the DMA-style
// scratch buffer bytes are copied through; on a host there is no real
// DMA engine, so each read lands in buf and is then handed to the
// receive callback.
func (u *UART) StartReceive(buf []byte) error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return fmt.Errorf("hostuart: closed")
	}
	u.rxBuf = buf
	u.rxAbort = make(chan struct{})
	abort := u.rxAbort
	u.mu.Unlock()

	go u.readLoop(buf, abort)
	return nil
}

// readLoop polls the fd and hands bytes to onReceive whenever it is
// set; it never sees the dispatcher directly. The caller wires
// onReceive to (*Dispatcher).PushFromISR with SetReceiveCallback.
func (u *UART) readLoop(buf []byte, abort chan struct{}) {
	pfd := []unix.PollFd{{Fd: int32(u.fd), Events: unix.POLLIN}}

	for {
		select {
		case <-abort:
			return
		default:
		}

		n, err := unix.Poll(pfd, int(u.cfg.IdleTimeout/time.Millisecond))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if n == 0 {
			continue
		}

		read, err := unix.Read(u.fd, buf)
		if err != nil || read <= 0 {
			if err == unix.EAGAIN {
				continue
			}
			return
		}

		u.mu.Lock()
		onReceive := u.onReceive
		u.mu.Unlock()
		if onReceive != nil {
			onReceive(buf[:read])
		}
	}
}

// SetReceiveCallback registers the function invoked with each run of
// bytes read from the tty (normally wired to the dispatcher's
// PushFromISR, since atcore.Platform's StartReceive has no callback
// parameter of its own — it assumes the caller polls RemainingCount
// instead, which a host tty has no register for). It may be set before
// or after StartReceive; the read loop looks it up on every read, and
// bytes read while it is unset are discarded.
func (u *UART) SetReceiveCallback(fn func([]byte)) {
	u.mu.Lock()
	u.onReceive = fn
	u.mu.Unlock()
}

// RemainingCount always reports 0: a host tty has no DMA remaining-
// count register, so HandleIdleLine is never invoked by this adapter
// (bytes are pushed directly from readLoop instead).
func (u *UART) RemainingCount() uint32 { return 0 }

// StartTransmit writes data and invokes done synchronously once the
// write completes (or fails), since there is no asynchronous TX-done
// ISR to wait for on a host descriptor.
func (u *UART) StartTransmit(data []byte, done func()) error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return fmt.Errorf("hostuart: closed")
	}
	fd := u.fd
	u.mu.Unlock()

	written := 0
	for written < len(data) {
		n, err := unix.Write(fd, data[written:])
		if err != nil {
			if err == unix.EAGAIN {
				continue
			}
			return fmt.Errorf("hostuart: write: %w", err)
		}
		written += n
	}

	done()
	return nil
}

// AbortTX is a no-op: writes on a host fd are synchronous and already
// complete by the time StartTransmit returns.
func (u *UART) AbortTX() error { return nil }

// AbortRX stops the read loop goroutine.
func (u *UART) AbortRX() error {
	u.mu.Lock()
	abort := u.rxAbort
	u.mu.Unlock()
	if abort != nil {
		close(abort)
	}
	return nil
}

// Close releases the underlying file descriptor.
func (u *UART) Close() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil
	}
	u.closed = true
	fd := u.fd
	u.mu.Unlock()

	_ = u.AbortRX()
	return unix.Close(fd)
}
