// Package fetch renders registry pages with a headless browser. Pages behind
// "load more" pagination are fully expanded before the DOM is returned.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/regharvest/fedresurs-cli/internal/model"
)

// Page is a fully rendered page: pagination exhausted, DOM serialized.
type Page struct {
	URL  string
	HTML string
}

// Fetcher produces rendered pages. Implementations own their browser or
// session lifecycle; Close releases it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Close() error
}

// Error is a typed fetch failure carrying the failure kind persisted on
// error-tagged Records.
type Error struct {
	Kind model.FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf maps an error from Fetch to a failure kind. Unknown errors are
// unexpected_error, matching how unclassified failures are persisted.
func KindOf(err error) model.FailureKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FailTimeout
	}
	return model.FailUnexpected
}

// IsTransient reports whether the failure is worth retrying within a run.
// Only timeouts qualify; navigation failures tend to repeat.
func IsTransient(err error) bool {
	return KindOf(err) == model.FailTimeout
}
