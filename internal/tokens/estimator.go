// Package tokens estimates prompt sizes for attempt diagnostics.
//
// DESIGN: tiktoken cl100k_base is a close enough proxy across providers for
// logging. The encoding is loaded lazily; if it cannot be loaded the
// estimator degrades to chars/4 and never fails.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

// DefaultEncoding is the tiktoken encoding used for estimates.
const DefaultEncoding = "cl100k_base"

// Estimator counts tokens in prompt text.
type Estimator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.Mutex
}

var (
	globalEstimator     *Estimator
	globalEstimatorOnce sync.Once
)

// Get returns the shared estimator, loading the encoding on first use.
func Get() *Estimator {
	globalEstimatorOnce.Do(func() {
		var err error
		globalEstimator, err = New()
		if err != nil {
			log.Warn().Err(err).Msg("tokens: encoding unavailable, using char-based estimates")
			globalEstimator = Fallback()
		}
	})
	return globalEstimator
}

// New creates an estimator backed by the default tiktoken encoding.
func New() (*Estimator, error) {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, err
	}
	return &Estimator{encoding: enc}, nil
}

// Fallback returns an estimator that only uses the chars/4 heuristic.
func Fallback() *Estimator {
	return &Estimator{}
}

// Count returns the estimated token count of text.
// Falls back to chars/4 when no encoding is loaded.
func (e *Estimator) Count(text string) int {
	if e == nil || e.encoding == nil {
		return len(text) / 4
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.encoding.Encode(text, nil, nil))
}
