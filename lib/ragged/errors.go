package ragged

/* errors.go contains the error taxonomy shared by all of sdtrace's engines.
Every error returned by the engines wraps exactly one of these, so callers
can use errors.Is to decide how to report it. All of them mean that the input
data is inconsistent: none are transient and none are retried. */

import (
	"errors"
)

var (
	// ErrShapeMismatch is returned when two co-indexed arrays disagree in
	// their shape or in their per-list counts.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrRaggedAxis is returned when an axis other than the innermost one
	// has a variable length.
	ErrRaggedAxis = errors.New("ragged axis")
	// ErrNonIntegerIndexer is returned when an indexer or identifier array
	// does not have an integral type.
	ErrNonIntegerIndexer = errors.New("non-integer indexer")
	// ErrInvalidIndex is returned for negative identifiers, keys or
	// indexer values, and for indices outside a caller-supplied bound.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrNonUniqueIndex is returned when uniqueness is enforced and two
	// elements would be scattered into the same cell.
	ErrNonUniqueIndex = errors.New("non-unique index")
	// ErrDuplicateIdentifier is returned when an identifier appears more than
	// once within a single outer position.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrCountMismatch is returned when precomputed counts do not sum to the
	// number of values they describe.
	ErrCountMismatch = errors.New("count mismatch")
	// ErrTableTooLarge is returned when a dense table would have more cells
	// than can be addressed with an int.
	ErrTableTooLarge = errors.New("table too large")
)
