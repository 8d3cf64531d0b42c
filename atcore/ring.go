package atcore

import (
	"bytes"
	"sync"
	"time"
)

// ring is the byte ring: a bounded byte FIFO, producer-safe from ISR
// context, consumer blocks with timeout. Grounded on the embedded
// sync.Mutex + free-list convention of usbarmory-tamago/dma/dma.go's
// Region, adapted from a block allocator to a circular byte queue, and
// on soc/nxp/enet/dma.go's wrap-around index arithmetic for the ring
// itself.
//
// pushFromISR never blocks: a short write silently drops the excess and
// the drop is observable through the returned count and the shared
// dropCounter.
type ring struct {
	mu   sync.Mutex
	buf  []byte
	head int // next byte to read
	n    int // number of valid bytes currently buffered
	wake chan struct{}

	drops *dropCounter
}

func newRing(capacity int, drops *dropCounter) *ring {
	return &ring{
		buf:   make([]byte, capacity),
		wake:  make(chan struct{}, 1),
		drops: drops,
	}
}

// pushFromISR appends as many bytes of data as fit and returns the
// count actually stored. It never blocks.
func (r *ring) pushFromISR(data []byte) int {
	r.mu.Lock()
	free := len(r.buf) - r.n
	take := len(data)
	if take > free {
		take = free
	}
	tail := (r.head + r.n) % len(r.buf)
	for i := 0; i < take; i++ {
		r.buf[(tail+i)%len(r.buf)] = data[i]
	}
	r.n += take
	r.mu.Unlock()

	if take < len(data) && r.drops != nil {
		r.drops.add(len(data) - take)
	}

	if take > 0 {
		select {
		case r.wake <- struct{}{}:
		default:
		}
	}
	return take
}

// reset discards any buffered bytes.
func (r *ring) reset() {
	r.mu.Lock()
	r.head = 0
	r.n = 0
	r.mu.Unlock()
}

// receiveUntil copies bytes out of the ring one at a time, checking
// after each byte whether the trailing bytes of out equal delim, and
// returns as soon as they do — stopping mid-ring if more than one
// line's worth of bytes is already buffered, so a single DMA/idle-line
// flush carrying several lines still yields them one call at a time,
// leaving the remainder in the ring for the next call. Also returns
// once cap-1 bytes have accumulated (reserving one slot for the null
// terminator) or timeout has elapsed. out is always left
// null-terminated. The returned count never includes the terminator
// byte.
func (r *ring) receiveUntil(delim []byte, out []byte, cap int, timeout time.Duration) int {
	if cap <= 0 {
		return 0
	}
	limit := cap - 1
	deadline := time.Now().Add(timeout)
	n := 0

	for {
		r.mu.Lock()
		for r.n > 0 && n < limit {
			out[n] = r.buf[r.head]
			r.head = (r.head + 1) % len(r.buf)
			r.n--
			n++

			if len(delim) > 0 && n >= len(delim) && bytes.Equal(out[n-len(delim):n], delim) {
				r.mu.Unlock()
				out[n] = 0
				return n
			}
		}
		r.mu.Unlock()

		if n >= limit {
			out[n] = 0
			return n
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			out[n] = 0
			return n
		}

		select {
		case <-r.wake:
		case <-time.After(remaining):
			out[n] = 0
			return n
		}
	}
}

// dropCounter tracks bytes lost to ring overflow so ambient logging can
// report a running total instead of one line per drop.
type dropCounter struct {
	mu    sync.Mutex
	total uint64
}

func (d *dropCounter) add(n int) {
	d.mu.Lock()
	d.total += uint64(n)
	d.mu.Unlock()
}

func (d *dropCounter) load() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.total
}
