package atcore

import (
	"log"
	"time"

	"golang.org/x/time/rate"
)

// defaultSampleInterval bounds how often sampledLogger emits a line
// while an overload condition persists.
const defaultSampleInterval = 5 * time.Second

// sampledLogger reports a recurring, noisy condition (ring overflow,
// handler-mutex timeout) without flooding the log: each call records
// the event and, via rate.Sometimes, emits at most one line per
// interval carrying a running total. rate.Sometimes is built exactly
// for this "log occasionally, not every time" shape.
type sampledLogger struct {
	logger   *log.Logger
	sometime rate.Sometimes
	count    uint64
}

func newSampledLogger(logger *log.Logger) *sampledLogger {
	return &sampledLogger{
		logger:   logger,
		sometime: rate.Sometimes{Interval: defaultSampleInterval},
	}
}

func (s *sampledLogger) report(format string, args ...interface{}) {
	if s == nil || s.logger == nil {
		return
	}
	s.count++
	s.sometime.Do(func() {
		s.logger.Printf(format+" (total %d)", append(args, s.count)...)
	})
}
