package models

// Strategy defines how candidates of equal size are verified
type Strategy string

const (
	// StrategyRepresentative compares every member of a size run against the
	// first unclaimed member, byte-by-byte
	StrategyRepresentative Strategy = "representative"
	// StrategyHash groups a size run by SHA-256 digest first and confirms
	// each digest group byte-by-byte
	StrategyHash Strategy = "hash"
)

// Validate checks that the strategy is known
func (s Strategy) Validate() error {
	switch s {
	case StrategyRepresentative, StrategyHash:
		return nil
	}
	return &ValidationError{Field: "strategy", Message: "must be 'representative' or 'hash', got '" + string(s) + "'"}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IOError reports a failed filesystem operation on one path
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}
