package dispatch

import (
	"errors"
	"fmt"

	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// ErrNoProvidersConfigured is returned when no provider has usable keys and
// mock fallback is not permitted. The message is shown verbatim to callers.
var ErrNoProvidersConfigured = errors.New("no AI services configured")

// ErrAllProvidersExhausted matches every *ExhaustedError.
var ErrAllProvidersExhausted = errors.New("all AI providers failed")

// ExhaustedError is returned when every active provider failed.
// It unwraps to ErrAllProvidersExhausted and to the last provider error.
type ExhaustedError struct {
	Tool     tools.Tool
	Attempts []Attempt
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d provider(s) tried for %s: %v", ErrAllProvidersExhausted, len(e.Attempts), e.Tool, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrAllProvidersExhausted}
	}
	return []error{ErrAllProvidersExhausted, e.Last}
}
