package sandpile

import "errors"

var (
	// ErrOutOfRange reports a coordinate or resolution outside the configured grid.
	ErrOutOfRange = errors.New("sandpile: out of range")
	// ErrInvalidConfiguration reports a resolution above capacity or a
	// non-positive tile dimension.
	ErrInvalidConfiguration = errors.New("sandpile: invalid configuration")
	// ErrNotReady reports an operation issued while the backing store clear
	// sequence is still running.
	ErrNotReady = errors.New("sandpile: store not ready")
)
