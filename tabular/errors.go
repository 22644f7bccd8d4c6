package tabular

import "errors"

// Error kinds returned by the dataset pipeline. Every fallible operation
// wraps one of these sentinels so callers can classify failures with
// errors.Is while still getting a descriptive message.
var (
	// ErrConfiguration indicates an invalid scalar parameter, such as a
	// non-positive balancing target or a split fraction outside (0,1).
	ErrConfiguration = errors.New("invalid configuration")

	// ErrSchema indicates a missing or invalid label column, mismatched
	// row widths, or non-finite values where finite ones are required.
	ErrSchema = errors.New("schema violation")

	// ErrShapeMismatch indicates feature or label matrix dimensions that
	// are incompatible with the classifier configuration.
	ErrShapeMismatch = errors.New("shape mismatch")
)
