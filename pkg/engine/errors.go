package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a rendering failure so callers can choose a recovery
// policy per class.
type Kind int

const (
	// KindCompile marks template text the host could not compile.
	KindCompile Kind = iota + 1
	// KindEvaluation marks a failure while executing a compiled template.
	KindEvaluation
	// KindLookup marks an include whose key is not registered.
	KindLookup
	// KindMalformedParameters marks an include with an unparsable
	// parameter list.
	KindMalformedParameters
)

var (
	ErrCompile             = errors.New("compile error")
	ErrEvaluation          = errors.New("evaluation error")
	ErrLookup              = errors.New("lookup error")
	ErrMalformedParameters = errors.New("malformed parameter list")
)

func (k Kind) String() string {
	switch k {
	case KindCompile:
		return "compile"
	case KindEvaluation:
		return "evaluation"
	case KindLookup:
		return "lookup"
	case KindMalformedParameters:
		return "malformed-parameters"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindCompile:
		return ErrCompile
	case KindEvaluation:
		return ErrEvaluation
	case KindLookup:
		return ErrLookup
	case KindMalformedParameters:
		return ErrMalformedParameters
	default:
		return nil
	}
}

// Error is a contained rendering failure. It matches the sentinel of its
// Kind through errors.Is and unwraps to the underlying cause.
type Error struct {
	Kind Kind
	// Engine is the name of the engine that produced the error.
	Engine string
	// Key is the partial key involved, if any.
	Key string
	// Template is the offending template text.
	Template string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Engine)
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Key != "" {
		fmt.Fprintf(&b, " in partial %q", e.Key)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	sentinel := e.Kind.sentinel()
	return sentinel != nil && target == sentinel
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return 0
}

// NewError is a small constructor used by engines.
func NewError(kind Kind, engineName, key, template string, err error) *Error {
	return &Error{
		Kind:     kind,
		Engine:   engineName,
		Key:      key,
		Template: template,
		Err:      err,
	}
}
