package matching

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSearchFailed
	KindDanglingOwner
	KindForbidden
	KindNotFound
	KindValidationFailed
)

func (k Kind) String() string {
	switch k {
	case KindSearchFailed:
		return "SearchFailed"
	case KindDanglingOwner:
		return "DanglingOwner"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindValidationFailed:
		return "ValidationFailed"
	default:
		return "Unknown"
	}
}

type EngineError struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *EngineError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Kind, msg)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is matches any EngineError of the same kind, so the sentinels below work
// with errors.Is.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	return ok && t.Kind == e.Kind
}

var (
	ErrSearchFailed     = &EngineError{Kind: KindSearchFailed}
	ErrDanglingOwner    = &EngineError{Kind: KindDanglingOwner}
	ErrForbidden        = &EngineError{Kind: KindForbidden}
	ErrNotFound         = &EngineError{Kind: KindNotFound}
	ErrValidationFailed = &EngineError{Kind: KindValidationFailed}
)

func newError(kind Kind, op, msg string, err error) *EngineError {
	return &EngineError{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of the first EngineError in err's chain.
func KindOf(err error) Kind {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindUnknown
}
