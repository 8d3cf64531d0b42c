// Package dmaview implements the DMA capture component: a read-only
// window over a circular DMA buffer plus the single mutable cursor
// (last_pos) that records how much of it has already been forwarded to
// the byte ring.
//
// Grounded on usbarmory-tamago/internal/dma/dma.go's raw-address window
// convention and soc/nxp/enet/dma.go's wrap-around arithmetic
// (bufferDescriptorRing), generalized from hardware buffer descriptors
// to a plain position-delta scheme: the caller reads a DMA controller's
// remaining-count register and this package turns the delta since the
// last read into zero, one or two contiguous byte runs.
package dmaview

import "sync"

// Mask runs fn with whatever interrupt-masking (or equivalent) critical
// section the platform requires so a concurrent ISR cannot observe a
// torn last_pos. On hosted targets a plain mutex is sufficient and is
// used when no Mask is supplied to New.
type Mask func(fn func())

// View is a read-only window of capacity D over a circular DMA buffer,
// plus the last_pos cursor.
type View struct {
	buf     []byte
	mask    Mask
	mu      sync.Mutex
	lastPos int
}

// New wraps buf (the raw DMA ring, owned and written by the platform's
// DMA controller) as a View of capacity len(buf). mask may be nil, in
// which case an internal mutex stands in for interrupt masking.
func New(buf []byte, mask Mask) *View {
	v := &View{buf: buf, mask: mask}
	if v.mask == nil {
		v.mask = v.defaultMask
	}
	return v
}

func (v *View) defaultMask(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn()
}

// Capacity returns D, the size of the underlying DMA ring.
func (v *View) Capacity() int {
	return len(v.buf)
}

// Capture computes current_pos from remaining (the DMA controller's
// remaining-count register value) and returns the contiguous run(s) of
// bytes produced since the last call, advancing last_pos. Three cases:
//
//   - current_pos == last_pos: returns nil (nothing forwarded)
//   - current_pos >  last_pos: one contiguous forward slice
//   - current_pos <  last_pos: the tail-then-head pair (wrap)
//
// last_pos is updated last, inside the masked critical section, so a
// concurrent ISR never observes a torn value.
func (v *View) Capture(remaining uint32) [][]byte {
	d := len(v.buf)
	currentPos := d - int(remaining)
	if currentPos < 0 || currentPos > d {
		// A remaining-count outside [0, D] cannot be translated to
		// a valid position; treat as "nothing new" rather than
		// indexing out of bounds. current_pos == D itself is valid:
		// it means the DMA controller filled the ring exactly to its
		// end, which the slicing below (buf[last_pos:D]) handles
		// without needing to special-case it down to 0.
		return nil
	}

	var segments [][]byte

	v.mask(func() {
		switch {
		case currentPos == v.lastPos:
			// nothing to forward
		case currentPos > v.lastPos:
			segments = [][]byte{v.buf[v.lastPos:currentPos]}
		default: // currentPos < v.lastPos: wrap
			segments = [][]byte{v.buf[v.lastPos:d], v.buf[0:currentPos]}
		}
		v.lastPos = currentPos
	})

	return segments
}

// Reset returns last_pos to zero, as part of a full dispatcher reset.
func (v *View) Reset() {
	v.mask(func() {
		v.lastPos = 0
	})
}
