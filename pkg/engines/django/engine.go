// Package django implements the engine for Django-style templates rendered
// by pongo2. Partials are included with {% include "atoms-button" %} and
// resolved from the partial registry while the template compiles.
//
// This engine has a reduced feature set: it has no style modifiers or
// parameter lists, and include data is passed with pongo2's own
// {% include "key" with name="value" %} form.
package django

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-patternlab/pkg/datacontext"
	"github.com/goliatone/go-patternlab/pkg/engine"
	"github.com/goliatone/go-patternlab/pkg/listitems"
	"github.com/goliatone/go-patternlab/pkg/partials"
	"github.com/goliatone/go-patternlab/pkg/pattern"
	"github.com/goliatone/go-patternlab/pkg/registry"
)

const (
	// Name identifies the engine.
	Name = "django"
	// Extension is the file extension of django templates.
	Extension = ".django"
)

var (
	includeRE    = regexp.MustCompile(`\{%-?\s*include\s+(?:"([^"]+)"|'([^']+)')((?:[^%]|%[^}])*?)\s*-?%\}`)
	identifierRE = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// Engine renders pongo2 templates. A new template set is created per render
// so no compiled state outlives a call.
type Engine struct {
	cfg engine.Config
}

var _ engine.Engine = (*Engine)(nil)

// New constructs a django engine.
func New(options ...engine.Option) *Engine {
	return &Engine{cfg: engine.NewConfig(options...)}
}

func (e *Engine) Name() string          { return Name }
func (e *Engine) FileExtension() string { return Extension }
func (e *Engine) ExpandPartials() bool  { return false }

func (e *Engine) RenderPattern(ctx context.Context, tmpl string, data any, reg *registry.Registry) engine.Result {
	var errs []*engine.Error
	fail := func(kind engine.Kind, key, src string, err error) *engine.Error {
		rerr := engine.NewError(kind, Name, key, src, err)
		errs = append(errs, rerr)
		e.cfg.Report(rerr)
		return rerr
	}

	if ctx != nil {
		if err := ctx.Err(); err != nil {
			fail(engine.KindEvaluation, "", tmpl, err)
			return engine.Result{Errors: errs}
		}
	}

	loader := &registryLoader{partials: reg, root: tmpl, maxDepth: e.cfg.MaxDepth, fail: fail}
	set := pongo2.NewSet(Name, loader)

	compiled, err := set.FromString(listitems.Expand(tmpl))
	if err != nil {
		fail(engine.KindCompile, "", tmpl, err)
		return engine.Result{Errors: errs}
	}

	var buf bytes.Buffer
	if err := compiled.ExecuteWriterUnbuffered(toContext(datacontext.Merge(nil, data)), &buf); err != nil {
		buf.WriteString(engine.Fragment(fail(engine.KindEvaluation, "", tmpl, err)))
	}
	return engine.Result{Output: buf.String(), Errors: errs}
}

// FindPartials returns the {% include %} tags with a literal template name.
func (e *Engine) FindPartials(tmpl string) []partials.Reference {
	matches := includeRE.FindAllStringSubmatchIndex(tmpl, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]partials.Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, partials.Reference{
			Match:     tmpl[m[0]:m[1]],
			Key:       submatch(tmpl, m, 1) + submatch(tmpl, m, 2),
			RawParams: strings.TrimSpace(submatch(tmpl, m, 3)),
			Start:     m[0],
			End:       m[1],
		})
	}
	return refs
}

// FindPartialsWithStyleModifiers always returns nil; style modifiers are not
// part of the django syntax.
func (e *Engine) FindPartialsWithStyleModifiers(string) []partials.Reference {
	return nil
}

// FindPartialsWithPatternParameters always returns nil; see
// FindPartialsWithStyleModifiers.
func (e *Engine) FindPartialsWithPatternParameters(string) []partials.Reference {
	return nil
}

func (e *Engine) FindListItems(tmpl string) []listitems.Marker {
	return listitems.Find(tmpl)
}

func (e *Engine) FindPartialKey(match string) string {
	m := includeRE.FindStringSubmatchIndex(match)
	if m == nil {
		return ""
	}
	return submatch(match, m, 1) + submatch(match, m, 2)
}

func (e *Engine) RegisterPartial(reg *registry.Registry, p *pattern.Pattern) error {
	return engine.RegisterPattern(reg, p)
}

func submatch(s string, m []int, group int) string {
	start, end := m[2*group], m[2*group+1]
	if start < 0 {
		return ""
	}
	return s[start:end]
}

// toContext drops keys pongo2 cannot address as identifiers.
func toContext(data map[string]any) pongo2.Context {
	out := make(pongo2.Context, len(data))
	for key, value := range data {
		if !identifierRE.MatchString(key) {
			continue
		}
		out[key] = value
	}
	return out
}
