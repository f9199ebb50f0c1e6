// Package patternlab is the entry point of the pattern library core. It wires
// the bundled engines into an assembler; the individual pieces live under
// pkg/.
package patternlab

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-patternlab/pkg/assembler"
	"github.com/goliatone/go-patternlab/pkg/engine"
	"github.com/goliatone/go-patternlab/pkg/engines/django"
	"github.com/goliatone/go-patternlab/pkg/engines/underscore"
)

// Engine is the contract every template syntax implements.
type Engine = engine.Engine

// Result is the contained outcome of a render call.
type Result = engine.Result

// Error is a typed rendering diagnostic.
type Error = engine.Error

// Build is the result of assembling a pattern library.
type Build = assembler.Build

// DefaultEngines returns a registry holding the underscore (.html) and
// django (.django) engines configured with options.
func DefaultEngines(options ...engine.Option) *engine.Registry {
	engines := engine.NewRegistry()
	engines.MustRegister(underscore.New(options...))
	engines.MustRegister(django.New(options...))
	return engines
}

// NewAssembler constructs an assembler over the default engines.
func NewAssembler(engineOptions []engine.Option, options ...assembler.Option) (*assembler.Assembler, error) {
	return assembler.New(DefaultEngines(engineOptions...), options...)
}

// BuildFS loads and renders every pattern in fsys with the default engines.
func BuildFS(ctx context.Context, fsys fs.FS, options ...assembler.Option) (*Build, error) {
	asm, err := NewAssembler(nil, options...)
	if err != nil {
		return nil, err
	}
	return asm.BuildFS(ctx, fsys)
}
