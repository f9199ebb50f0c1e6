// Package assembler drives a full pattern library build: it loads patterns
// from a source tree, registers them as partials, works out which patterns
// include which, and renders everything with the owning engine.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-patternlab/pkg/engine"
	"github.com/goliatone/go-patternlab/pkg/partials"
	"github.com/goliatone/go-patternlab/pkg/pattern"
	"github.com/goliatone/go-patternlab/pkg/registry"
)

// ErrDiagnostics is returned by strict builds when any pattern reported a
// rendering problem.
var ErrDiagnostics = errors.New("assembler: patterns reported diagnostics")

// Assembler builds pattern libraries. It is safe for concurrent use.
type Assembler struct {
	engines *engine.Registry
	cfg     config
}

// New constructs an Assembler dispatching to the given engines.
func New(engines *engine.Registry, options ...Option) (*Assembler, error) {
	if engines == nil {
		return nil, errors.New("assembler: engine registry is required")
	}
	if len(engines.List()) == 0 {
		return nil, errors.New("assembler: at least one engine is required")
	}
	cfg := defaultConfig()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Assembler{engines: engines, cfg: cfg}, nil
}

// Rendered is the outcome for one pattern.
type Rendered struct {
	Pattern *pattern.Pattern
	Output  string
	Errors  []*engine.Error
}

// Build is the result of a build pass.
type Build struct {
	Library  *Library
	Registry *registry.Registry
	// Results are in Library.Patterns order.
	Results []Rendered
	// Lineage maps a pattern key to the keys of the patterns it includes.
	Lineage map[string][]string
	// LineageR maps a pattern key to the keys of the patterns including it.
	LineageR map[string][]string
}

// Diagnostics returns every error reported while rendering, in pattern
// order.
func (b *Build) Diagnostics() []*engine.Error {
	var out []*engine.Error
	for _, res := range b.Results {
		out = append(out, res.Errors...)
	}
	return out
}

// BuildFS loads fsys and builds it.
func (a *Assembler) BuildFS(ctx context.Context, fsys fs.FS) (*Build, error) {
	lib, err := a.Load(fsys)
	if err != nil {
		return nil, err
	}
	return a.Build(ctx, lib)
}

// Build registers every pattern of lib in a fresh registry and renders them
// concurrently. A pattern's data is the library's global data overlaid with
// its own.
func (a *Assembler) Build(ctx context.Context, lib *Library) (*Build, error) {
	if lib == nil {
		return nil, errors.New("assembler: library is required")
	}

	reg := registry.New()
	for _, p := range lib.Patterns {
		eng, err := a.engines.Get(p.Engine)
		if err != nil {
			return nil, fmt.Errorf("assembler: pattern %s: %w", p.RelPath, err)
		}
		if err := eng.RegisterPartial(reg, p); err != nil {
			return nil, fmt.Errorf("assembler: register %s: %w", p.RelPath, err)
		}
	}

	build := &Build{
		Library:  lib,
		Registry: reg,
		Results:  make([]Rendered, len(lib.Patterns)),
	}
	build.Lineage, build.LineageR = a.Lineage(lib)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.workers)
	for i, p := range lib.Patterns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			build.Results[i] = a.render(gctx, p, lib.GlobalData, reg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assembler: build: %w", err)
	}

	diagnostics := build.Diagnostics()
	a.cfg.logger.Info("build finished", "patterns", len(build.Results), "diagnostics", len(diagnostics))
	if a.cfg.strict && len(diagnostics) > 0 {
		errs := make([]error, 0, len(diagnostics)+1)
		errs = append(errs, ErrDiagnostics)
		for _, d := range diagnostics {
			errs = append(errs, d)
		}
		return build, errors.Join(errs...)
	}
	return build, nil
}

func (a *Assembler) render(ctx context.Context, p *pattern.Pattern, globals map[string]any, reg *registry.Registry) Rendered {
	eng, err := a.engines.Get(p.Engine)
	if err != nil {
		return Rendered{Pattern: p, Errors: []*engine.Error{
			engine.NewError(engine.KindLookup, p.Engine, p.Key, "", err),
		}}
	}

	tmpl := p.Template
	if eng.ExpandPartials() {
		tmpl = a.expand(eng, tmpl, reg)
	}

	data := make(map[string]any, len(globals)+len(p.Data))
	maps.Copy(data, globals)
	maps.Copy(data, p.Data)

	a.cfg.logger.Debug("rendering pattern", "key", p.Key, "engine", eng.Name())
	res := eng.RenderPattern(ctx, tmpl, data, reg)
	return Rendered{Pattern: p, Output: res.Output, Errors: res.Errors}
}

// expand splices partial text into tmpl for engines that cannot resolve
// includes themselves. Includes that do not resolve, or that carry
// parameters or style modifiers, are left for the engine. Splicing repeats
// for nested includes up to the nesting limit.
func (a *Assembler) expand(eng engine.Engine, tmpl string, reg *registry.Registry) string {
	for range engine.DefaultMaxDepth {
		refs := eng.FindPartials(tmpl)
		spliced := false
		tmpl = partials.Replace(tmpl, refs, func(_ int, ref partials.Reference) string {
			if ref.HasParams || ref.Modifier != "" {
				return ref.Match
			}
			src, err := reg.Lookup(eng.FindPartialKey(ref.Match))
			if err != nil {
				return ref.Match
			}
			spliced = true
			return src
		})
		if !spliced {
			break
		}
	}
	return tmpl
}
