package domain

import "errors"

// Sentinel errors for input handling. Malformed geometry primitives are
// skipped at the parse level and never surface as errors; these cover the
// cases where the whole input is unusable.
var (
	ErrNoTokens        = errors.New("diagram contains no classifiable tokens")
	ErrEmptyDocument   = errors.New("empty document")
	ErrBadExclusionRef = errors.New("malformed exclusion entry")
)
