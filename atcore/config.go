package atcore

import "time"

// Configuration defaults, all overridable through Config.
const (
	DefaultRXBufferSize   = 512
	DefaultTXBufferSize   = 512
	DefaultDMABufferSize  = 512
	DefaultMaxHandlers    = 10
	DefaultTXTimeout      = 1000 * time.Millisecond
	DefaultMutexTimeout   = 500 * time.Millisecond
	DefaultDispatchMutex  = 100 * time.Millisecond
	DefaultLineTerminator = "\r\n"
)

// Config holds the dispatcher's tunables as a plain struct literal the
// caller owns, never a package-level var.
type Config struct {
	// RXBufferSize is the byte ring capacity.
	RXBufferSize int

	// TXBufferSize is the transmit scratch buffer capacity.
	TXBufferSize int

	// DMABufferSize is the capacity of the DMA view the caller
	// provides to the dispatcher.
	DMABufferSize int

	// MaxHandlers bounds the handler table.
	MaxHandlers int

	// TXTimeout bounds the wait on transmit completion.
	TXTimeout time.Duration

	// MutexTimeout bounds tx-mutex acquisition. Send-receive setup
	// and cleanup take the handler mutex without a timeout.
	MutexTimeout time.Duration

	// DispatchMutexTimeout bounds handler-mutex acquisition inside
	// the dispatch loop's match step, independent of MutexTimeout.
	DispatchMutexTimeout time.Duration

	// LineTerminator frames inbound lines and is appended, verbatim,
	// to every outbound command.
	LineTerminator string
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() Config {
	return Config{
		RXBufferSize:         DefaultRXBufferSize,
		TXBufferSize:         DefaultTXBufferSize,
		DMABufferSize:        DefaultDMABufferSize,
		MaxHandlers:          DefaultMaxHandlers,
		TXTimeout:            DefaultTXTimeout,
		MutexTimeout:         DefaultMutexTimeout,
		DispatchMutexTimeout: DefaultDispatchMutex,
		LineTerminator:       DefaultLineTerminator,
	}
}

func (c Config) validate() error {
	if c.RXBufferSize <= 0 || c.TXBufferSize <= 0 || c.DMABufferSize <= 0 {
		return ErrInvalidArg
	}
	if c.MaxHandlers <= 0 {
		return ErrInvalidArg
	}
	if c.LineTerminator == "" {
		return ErrInvalidArg
	}
	return nil
}
