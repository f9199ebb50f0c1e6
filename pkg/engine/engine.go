// Package engine defines the contract every pattern template syntax
// implements, plus the pieces they share: typed render errors, contained
// render results, inline error fragments and a registry that dispatches
// engines by name or file extension.
package engine

import (
	"context"
	"errors"

	"github.com/goliatone/go-patternlab/pkg/listitems"
	"github.com/goliatone/go-patternlab/pkg/partials"
	"github.com/goliatone/go-patternlab/pkg/pattern"
	"github.com/goliatone/go-patternlab/pkg/registry"
)

// Engine is implemented by each template syntax. The assembler treats every
// engine the same way: register partials, discover dependencies, render.
type Engine interface {
	// Name identifies the engine, e.g. "underscore".
	Name() string
	// FileExtension is the canonical extension (with dot) of templates
	// written for this engine.
	FileExtension() string
	// ExpandPartials reports whether partial text must be spliced into
	// the parent template before RenderPattern is called. Engines that
	// resolve partials while compiling return false.
	ExpandPartials() bool

	// RenderPattern renders template against data, resolving partials
	// through the given registry. Failures never escape as errors or
	// panics; they are reported in the Result.
	RenderPattern(ctx context.Context, template string, data any, partials *registry.Registry) Result

	FindPartials(template string) []partials.Reference
	FindPartialsWithStyleModifiers(template string) []partials.Reference
	FindPartialsWithPatternParameters(template string) []partials.Reference
	FindListItems(template string) []listitems.Marker
	FindPartialKey(match string) string

	// RegisterPartial stores the pattern's template in reg.
	RegisterPartial(reg *registry.Registry, p *pattern.Pattern) error
}

// Result is the contained outcome of a render call.
type Result struct {
	Output string
	Errors []*Error
}

// OK reports whether the render produced no diagnostics.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Err joins the diagnostics into a single error, or returns nil.
func (r Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, err := range r.Errors {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// HasKind reports whether any diagnostic has the given kind.
func (r Result) HasKind(kind Kind) bool {
	for _, err := range r.Errors {
		if err.Kind == kind {
			return true
		}
	}
	return false
}
