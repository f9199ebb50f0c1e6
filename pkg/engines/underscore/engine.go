// Package underscore implements the engine for underscore-style templates:
//
//	<%= title %>                   raw interpolation
//	<%- title %>                   HTML escaped interpolation
//	<%= title | upper | trunc 20 %> filter chain
//	{{> atoms-button:primary(label: "Go") }}
//	<%= _.renderPartial('atoms-button', obj) %>
//
// Templates are rewritten into text/template source and executed with the
// sprig function map. Property paths are resolved by datacontext.Lookup;
// nothing inside a tag is ever evaluated as code.
package underscore

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/goliatone/go-patternlab/pkg/datacontext"
	"github.com/goliatone/go-patternlab/pkg/engine"
	"github.com/goliatone/go-patternlab/pkg/listitems"
	"github.com/goliatone/go-patternlab/pkg/partials"
	"github.com/goliatone/go-patternlab/pkg/pattern"
	"github.com/goliatone/go-patternlab/pkg/registry"
)

const (
	// Name identifies the engine.
	Name = "underscore"
	// Extension is the file extension of underscore templates.
	Extension = ".html"
)

var hostFuncs = sprig.TxtFuncMap()

// Engine renders underscore templates. It holds no per-render state and is
// safe for concurrent use.
type Engine struct {
	cfg engine.Config
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an underscore engine.
func New(options ...engine.Option) *Engine {
	return &Engine{cfg: engine.NewConfig(options...)}
}

func (e *Engine) Name() string          { return Name }
func (e *Engine) FileExtension() string { return Extension }

// ExpandPartials is false: partials are resolved while rendering.
func (e *Engine) ExpandPartials() bool { return false }

// RenderPattern renders tmpl with data. The top level context is data merged
// over nothing, so data is also reachable as parentData.
func (e *Engine) RenderPattern(ctx context.Context, tmpl string, data any, reg *registry.Registry) engine.Result {
	if ctx == nil {
		ctx = context.Background()
	}
	root := datacontext.Merge(nil, data)
	r := &renderer{
		ctx:      ctx,
		cfg:      e.cfg,
		partials: reg,
		root:     root,
	}
	out, _ := r.render("", tmpl, root, 0)
	return engine.Result{Output: out, Errors: r.errs}
}

// FindPartials returns {{> key }} includes and renderPartial calls in
// source order.
func (e *Engine) FindPartials(tmpl string) []partials.Reference {
	refs := partials.FindPartials(tmpl)
	calls := findCalls(tmpl)
	if len(calls) == 0 {
		return refs
	}
	refs = append(refs, calls...)
	slices.SortStableFunc(refs, func(a, b partials.Reference) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return refs
}

func (e *Engine) FindPartialsWithStyleModifiers(tmpl string) []partials.Reference {
	return partials.FindPartialsWithStyleModifiers(tmpl)
}

func (e *Engine) FindPartialsWithPatternParameters(tmpl string) []partials.Reference {
	return partials.FindPartialsWithPatternParameters(tmpl)
}

func (e *Engine) FindListItems(tmpl string) []listitems.Marker {
	return listitems.Find(tmpl)
}

// FindPartialKey accepts both include forms returned by FindPartials.
func (e *Engine) FindPartialKey(match string) string {
	if key := partials.FindPartialKey(match); key != "" {
		return key
	}
	for _, ref := range findCalls(match) {
		return ref.Key
	}
	return ""
}

func (e *Engine) RegisterPartial(reg *registry.Registry, p *pattern.Pattern) error {
	return engine.RegisterPattern(reg, p)
}

// renderer carries the state of one RenderPattern call.
type renderer struct {
	ctx      context.Context
	cfg      engine.Config
	partials *registry.Registry
	root     map[string]any
	errs     []*engine.Error
}

// render compiles and executes src. A compile failure yields no output and
// is returned so include sites can replace the include with a fragment.
// Evaluation failures keep the output produced so far, followed by a
// fragment.
func (r *renderer) render(key, src string, data map[string]any, depth int) (string, *engine.Error) {
	prog, err := translate(listitems.Expand(src))
	if err != nil {
		return "", r.fail(engine.KindCompile, key, src, err)
	}

	tmpl, err := template.New(templateName(key)).
		Delims(leftDelim, rightDelim).
		Option("missingkey=error").
		Funcs(hostFuncs).
		Funcs(r.funcs(prog, src, data, depth)).
		Parse(prog.source)
	if err != nil {
		return "", r.fail(engine.KindCompile, key, src, err)
	}

	var buf bytes.Buffer
	if err := execute(tmpl, &buf, data); err != nil {
		buf.WriteString(engine.Fragment(r.fail(engine.KindEvaluation, key, src, err)))
	}
	return buf.String(), nil
}

// funcs binds the per-call functions. src is the template being executed;
// include failures report it as the offending template text.
func (r *renderer) funcs(prog *program, src string, data map[string]any, depth int) template.FuncMap {
	return template.FuncMap{
		"lookupPath": func(path string) (any, error) {
			return r.lookup(data, path)
		},
		"includePartial": func(i int) string {
			return r.includeReference(prog.includes[i], src, data, depth)
		},
		"renderPartial": func(key, dataPath string) string {
			return r.renderCall(key, dataPath, src, data, depth)
		},
	}
}

func (r *renderer) lookup(data map[string]any, path string) (any, error) {
	scope := data
	switch {
	case path == wholeContext:
		return data, nil
	case path == allData:
		return r.root, nil
	case strings.HasPrefix(path, allData+"."):
		scope, path = r.root, strings.TrimPrefix(path, allData+".")
	case strings.HasPrefix(path, wholeContext+"."):
		if _, shadowed := data[wholeContext]; !shadowed {
			path = strings.TrimPrefix(path, wholeContext+".")
		}
	}

	value, ok := datacontext.Lookup(scope, path)
	if !ok {
		return nil, fmt.Errorf("%s is not defined", path)
	}
	if value == nil {
		return "", nil
	}
	return value, nil
}

func (r *renderer) includeReference(ref partials.Reference, src string, data map[string]any, depth int) string {
	if ref.Err != nil {
		return engine.Fragment(r.fail(engine.KindMalformedParameters, ref.Key, ref.Match, ref.Err))
	}
	params := ref.Params
	if ref.Modifier != "" {
		params = maps.Clone(params)
		if params == nil {
			params = make(map[string]any, 1)
		}
		params[datacontext.StyleModifierKey] = ref.StyleClasses()
	}
	return r.include(ref.Key, src, datacontext.Merge(params, data), depth)
}

func (r *renderer) renderCall(key, dataPath, src string, data map[string]any, depth int) string {
	var params any
	if dataPath != "" {
		value, err := r.lookup(data, dataPath)
		if err != nil {
			return engine.Fragment(r.fail(engine.KindEvaluation, key, src, err))
		}
		params = value
	}
	return r.include(key, src, datacontext.Merge(params, data), depth)
}

// include renders the partial key from within src.
func (r *renderer) include(key, src string, data map[string]any, depth int) string {
	if err := r.ctx.Err(); err != nil {
		return engine.Fragment(r.fail(engine.KindEvaluation, key, src, err))
	}
	if depth+1 > r.cfg.MaxDepth {
		err := fmt.Errorf("partial nesting exceeds %d levels", r.cfg.MaxDepth)
		return engine.Fragment(r.fail(engine.KindEvaluation, key, src, err))
	}
	partial, err := r.partials.Lookup(key)
	if err != nil {
		return engine.Fragment(r.fail(engine.KindLookup, key, src, err))
	}
	out, compileErr := r.render(key, partial, data, depth+1)
	if compileErr != nil {
		return engine.Fragment(compileErr)
	}
	return out
}

func (r *renderer) fail(kind engine.Kind, key, src string, err error) *engine.Error {
	rerr := engine.NewError(kind, Name, key, src, err)
	r.errs = append(r.errs, rerr)
	r.cfg.Report(rerr)
	return rerr
}

func execute(tmpl *template.Template, w io.Writer, data any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return tmpl.Execute(w, data)
}

func templateName(key string) string {
	if key == "" {
		return "pattern"
	}
	return key
}
