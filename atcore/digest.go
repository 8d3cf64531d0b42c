package atcore

import (
	"encoding/hex"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// transcriptDigest maintains a running BLAKE2b hash of every outbound
// command and every line accumulated by a send-receive, and periodically
// writes a hex digest snapshot to an audit sink. It is an optional
// feature: Dispatcher.digest is nil unless SetTranscriptDigest was
// called.
//
// BLAKE2b needs no separate streaming-reset bookkeeping for a
// long-lived, periodically-snapshotted hash, unlike SHA-2's fixed
// block-size reset ceremony.
type hasher interface {
	io.Writer
	Sum(b []byte) []byte
}

type transcriptDigest struct {
	mu       sync.Mutex
	h        hasher
	sink     io.Writer
	interval time.Duration
	last     time.Time
}

func newTranscriptDigest(sink io.Writer) (*transcriptDigest, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, wrapf(ErrInitFail, "blake2b: %v", err)
	}
	return &transcriptDigest{
		h:        h,
		sink:     sink,
		interval: 5 * time.Second,
	}, nil
}

// observe feeds data into the running hash and, no more than once per
// interval, writes the current digest as a hex line to the sink.
func (t *transcriptDigest) observe(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.h.Write(data)

	now := time.Now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return
	}
	t.last = now

	sum := t.h.Sum(nil)
	line := hex.EncodeToString(sum) + "\n"
	t.sink.Write([]byte(line))
}
