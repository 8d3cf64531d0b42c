package dmaview

import "testing"

func TestCaptureForward(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf, "0123456789abcdef")
	v := New(buf, nil)

	// remaining = 16 - 4 = current_pos 4... start from last_pos 0
	segs := v.Capture(uint32(len(buf) - 4))
	if len(segs) != 1 || string(segs[0]) != "0123" {
		t.Fatalf("forward capture = %v, want [0123]", segsToStrings(segs))
	}
}

func TestCaptureWrap(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf, "0123456789abcdef")
	v := New(buf, nil)

	v.Capture(uint32(len(buf) - 12)) // advance last_pos to 12
	segs := v.Capture(uint32(len(buf) - 4))
	// current_pos = 4 < last_pos 12: wrap, tail then head
	if len(segs) != 2 || string(segs[0]) != "cdef" || string(segs[1]) != "0123" {
		t.Fatalf("wrap capture = %v, want [cdef 0123]", segsToStrings(segs))
	}
}

func TestCaptureNothingNew(t *testing.T) {
	buf := make([]byte, 16)
	v := New(buf, nil)

	v.Capture(uint32(len(buf) - 5))
	segs := v.Capture(uint32(len(buf) - 5))
	if segs != nil {
		t.Fatalf("capture with no movement = %v, want nil", segsToStrings(segs))
	}
}

func TestReset(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf, "0123456789abcdef")
	v := New(buf, nil)

	v.Capture(uint32(len(buf) - 8))
	v.Reset()

	segs := v.Capture(uint32(len(buf) - 4))
	if len(segs) != 1 || string(segs[0]) != "0123" {
		t.Fatalf("capture after reset = %v, want [0123]", segsToStrings(segs))
	}
}

func segsToStrings(segs [][]byte) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = string(s)
	}
	return out
}
