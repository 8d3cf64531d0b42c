package atcore

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/elkanamol/uAT/atcore/dmaview"
)

// srSlot is the send-receive slot: non-active means no synchronous
// request is outstanding.
type srSlot struct {
	active bool
	out    []byte
	cap    int
	len    int
}

// Dispatcher is the singleton state shared by the consume loop, the
// send-receive coordinator and the transmitter. Construct with New,
// tear down with Close; Register/RegisterURC/Unregister may be called
// at any time after construction.
type Dispatcher struct {
	cfg      Config
	platform Platform

	ring *ring
	view *dmaview.View
	dma  []byte

	handlerMu boundedMutex
	table     *handlerTable
	sr        srSlot

	txMu      boundedMutex
	txScratch []byte
	txDone    chan struct{}
	srMatched chan struct{}

	digest *transcriptDigest

	logger   *log.Logger
	drops    *dropCounter
	dropLog  *sampledLogger
	mutexLog *sampledLogger

	wg      sync.WaitGroup
	stop    chan struct{}
	started bool
}

// New constructs and initializes a Dispatcher bound to platform, then
// starts the dispatcher's consume-loop goroutine. Returns ErrInvalidArg
// if cfg is invalid, ErrInitFail if the platform rejects StartReceive.
func New(platform Platform, cfg Config) (*Dispatcher, error) {
	if platform == nil {
		return nil, ErrInvalidArg
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		cfg:       cfg,
		platform:  platform,
		table:     newHandlerTable(cfg.MaxHandlers),
		handlerMu: newBoundedMutex(),
		txMu:      newBoundedMutex(),
		txScratch: make([]byte, cfg.TXBufferSize),
		txDone:    make(chan struct{}, 1),
		srMatched: make(chan struct{}, 1),
		logger:    log.Default(),
		drops:     &dropCounter{},
		stop:      make(chan struct{}),
	}
	d.dropLog = newSampledLogger(d.logger)
	d.mutexLog = newSampledLogger(d.logger)
	d.ring = newRing(cfg.RXBufferSize, d.drops)

	if err := d.startReceive(); err != nil {
		return nil, err
	}

	d.wg.Add(1)
	d.started = true
	go d.run()

	return d, nil
}

func (d *Dispatcher) startReceive() error {
	d.dma = make([]byte, d.cfg.DMABufferSize)
	d.view = dmaview.New(d.dma, nil)
	if err := d.platform.StartReceive(d.dma); err != nil {
		return wrapf(ErrInitFail, "start receive: %v", err)
	}
	return nil
}

// SetLogger overrides the default log.Default() destination for
// diagnostic output (ring overflow, handler-mutex timeouts).
func (d *Dispatcher) SetLogger(l *log.Logger) {
	d.logger = l
	d.dropLog.logger = l
	d.mutexLog.logger = l
}

// PushFromISR feeds raw bytes into the byte ring from an interrupt
// context. It never blocks. IT-mode (non-DMA) receivers call this
// directly with one byte at a time, each call from a fresh RX-complete
// ISR that re-arms single-byte reception.
func (d *Dispatcher) PushFromISR(data []byte) int {
	n := d.ring.pushFromISR(data)
	if n < len(data) {
		d.dropLog.report("atcore: byte ring overflow, dropped %d byte(s)", len(data)-n)
	}
	return n
}

// HandleIdleLine is called from the peripheral's idle-line interrupt.
// It reads the DMA controller's remaining-count register, translates
// it into zero, one or two contiguous runs via the DMA view, and
// forwards them to the byte ring. Returns false if any forwarded run
// was short (bytes were dropped); the DMA view's cursor still advances
// on a short write rather than rolling back, so the next capture
// doesn't re-deliver bytes the ring already rejected.
func (d *Dispatcher) HandleIdleLine() bool {
	remaining := d.platform.RemainingCount()
	segments := d.view.Capture(remaining)

	ok := true
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if d.PushFromISR(seg) < len(seg) {
			ok = false
		}
	}
	return ok
}

// notifyTXDone is what a platform's TX-complete ISR callback (passed to
// StartTransmit) ultimately invokes.
func (d *Dispatcher) notifyTXDone() {
	select {
	case d.txDone <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	term := []byte(d.cfg.LineTerminator)
	line := make([]byte, d.cfg.RXBufferSize)

	for {
		select {
		case <-d.stop:
			return
		default:
		}

		n := d.ring.receiveUntil(term, line, len(line), time.Second)
		if n == 0 {
			continue
		}

		d.dispatch(line[:n])
	}
}

// dispatch looks up the handler for line under the handler mutex,
// releases the mutex, then invokes the handler — centralising the
// release-before-invoke path in this single call site so a handler
// calling back into Register or SendReceive can never deadlock against
// its own dispatch.
func (d *Dispatcher) dispatch(line []byte) {
	if !d.handlerMu.TryLock(d.cfg.DispatchMutexTimeout) {
		d.mutexLog.report("atcore: handler mutex timeout, dropped line")
		return
	}

	accumulated := d.sr.active
	if accumulated {
		appendTruncated(&d.sr.out, &d.sr.len, d.sr.cap, line)
	}

	handler, rest, matched := d.table.match(line)
	d.handlerMu.Unlock()

	if accumulated && d.digest != nil {
		d.digest.observe(line)
	}

	if matched {
		handler.Handle(rest)
	}
}

// appendTruncated appends src to out[:len] up to cap-1 bytes, always
// leaving out null-terminated: overflow truncates silently rather than
// returning an error, since a send-receive caller would otherwise lose
// the partial accumulation it already has.
func appendTruncated(out *[]byte, length *int, capacity int, src []byte) {
	if capacity <= 0 {
		return
	}
	room := capacity - 1 - *length
	if room < 0 {
		room = 0
	}
	n := len(src)
	if n > room {
		n = room
	}
	copy((*out)[*length:*length+n], src[:n])
	*length += n
	(*out)[*length] = 0
}

// Register installs or updates an ordinary handler for prefix. The
// prefix slice is borrowed and must outlive the registration.
func (d *Dispatcher) Register(prefix []byte, h Handler) error {
	d.handlerMu.Lock()
	defer d.handlerMu.Unlock()
	return d.table.register(prefix, h)
}

// RegisterURC installs h as an unsolicited-result-code handler,
// prepending it so it takes precedence over ordinary handlers and any
// outstanding send-receive's own collector entry.
func (d *Dispatcher) RegisterURC(prefix []byte, h Handler) error {
	d.handlerMu.Lock()
	defer d.handlerMu.Unlock()
	return d.table.registerURC(prefix, h)
}

// Unregister removes the handler for prefix. Returns ErrNotFound if
// absent.
func (d *Dispatcher) Unregister(prefix []byte) error {
	d.handlerMu.Lock()
	defer d.handlerMu.Unlock()
	return d.table.unregister(prefix)
}

// SetTranscriptDigest enables a running BLAKE2b digest of every
// outbound command and every send-receive response accumulation,
// periodically written to w. Pass a nil writer to disable. See
// digest.go for the digest itself.
func (d *Dispatcher) SetTranscriptDigest(w io.Writer) error {
	if w == nil {
		d.digest = nil
		return nil
	}
	td, err := newTranscriptDigest(w)
	if err != nil {
		return err
	}
	d.digest = td
	return nil
}

// Stats reports counters useful for diagnostics (cmd/atcoresim exposes
// these through expvar/debugcharts).
type Stats struct {
	BytesDropped  uint64
	HandlersInUse int
}

// Stats returns a snapshot of dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	d.handlerMu.Lock()
	n := len(d.table.entries)
	d.handlerMu.Unlock()

	return Stats{
		BytesDropped:  d.drops.load(),
		HandlersInUse: n,
	}
}

// Reset aborts in-flight peripheral I/O, resets the byte ring and DMA
// cursor, and restarts reception. The handler table and any
// outstanding send-receive slot are left untouched; a send-receive in
// flight during Reset times out naturally.
func (d *Dispatcher) Reset() error {
	if err := d.platform.AbortTX(); err != nil {
		return wrapf(ErrInitFail, "abort tx: %v", err)
	}
	if err := d.platform.AbortRX(); err != nil {
		return wrapf(ErrInitFail, "abort rx: %v", err)
	}

	d.ring.reset()
	d.view.Reset()

	if err := d.startReceive(); err != nil {
		return err
	}
	return nil
}

// Close stops the dispatcher's consume-loop goroutine and waits for it
// to exit. It does not abort peripheral I/O; call Reset first if that
// is required.
func (d *Dispatcher) Close() {
	if !d.started {
		return
	}
	close(d.stop)
	d.wg.Wait()
	d.started = false
}
