package engine

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-patternlab/pkg/listitems"
	"github.com/goliatone/go-patternlab/pkg/partials"
	"github.com/goliatone/go-patternlab/pkg/pattern"
	"github.com/goliatone/go-patternlab/pkg/registry"
)

type stubEngine struct {
	name string
	ext  string
}

func (s stubEngine) Name() string          { return s.name }
func (s stubEngine) FileExtension() string { return s.ext }
func (s stubEngine) ExpandPartials() bool  { return false }
func (s stubEngine) RenderPattern(context.Context, string, any, *registry.Registry) Result {
	return Result{}
}
func (s stubEngine) FindPartials(string) []partials.Reference { return nil }
func (s stubEngine) FindPartialsWithStyleModifiers(string) []partials.Reference {
	return nil
}
func (s stubEngine) FindPartialsWithPatternParameters(string) []partials.Reference {
	return nil
}
func (s stubEngine) FindListItems(string) []listitems.Marker { return nil }
func (s stubEngine) FindPartialKey(string) string            { return "" }
func (s stubEngine) RegisterPartial(reg *registry.Registry, p *pattern.Pattern) error {
	return RegisterPattern(reg, p)
}

func TestRegistryDispatch(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustRegister(stubEngine{name: "Underscore", ext: ".html"})
	reg.MustRegister(stubEngine{name: "django", ext: "django"})

	if diff := cmp.Diff([]string{"django", "underscore"}, reg.List()); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{".django", ".html"}, reg.Extensions()); diff != "" {
		t.Fatalf("Extensions mismatch (-want +got):\n%s", diff)
	}

	e, err := reg.Get("underscore")
	if err != nil || e.Name() != "Underscore" {
		t.Fatalf("Get(underscore) = %v, %v", e, err)
	}
	if e, ok := reg.ForPath("00-atoms/button.django"); !ok || e.Name() != "django" {
		t.Fatalf("ForPath(.django) = %v, %v", e, ok)
	}
	if e, ok := reg.ForExtension("HTML"); !ok || e.Name() != "Underscore" {
		t.Fatalf("ForExtension(HTML) = %v, %v", e, ok)
	}
	if _, ok := reg.ForPath("readme.md"); ok {
		t.Fatalf("unexpected engine for .md")
	}
	if _, err := reg.Get("mustache"); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}

func TestRegistryRejectsConflicts(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustRegister(stubEngine{name: "underscore", ext: ".html"})

	if err := reg.Register(stubEngine{name: "underscore", ext: ".tpl"}); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if err := reg.Register(stubEngine{name: "other", ext: ".html"}); err == nil {
		t.Fatalf("expected duplicate extension error")
	}
	if err := reg.Register(stubEngine{name: "", ext: ".x"}); err == nil {
		t.Fatalf("expected missing name error")
	}
	if err := reg.Register(stubEngine{name: "noext"}); err == nil {
		t.Fatalf("expected missing extension error")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected nil engine error")
	}
}

func TestRegisterPatternAliases(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	p := pattern.New("00-atoms/00-global/00-helloworld.html", "Hello world!\n", nil)
	if err := RegisterPattern(reg, p); err != nil {
		t.Fatalf("RegisterPattern: %v", err)
	}

	want := []string{
		"00-atoms/00-global/00-helloworld",
		"00-atoms/00-global/00-helloworld.html",
		"atoms-helloworld",
	}
	if diff := cmp.Diff(want, reg.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil, WithMaxDepth(0), WithLogger(nil))
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Fatalf("MaxDepth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
	}
	if cfg.Logger == nil {
		t.Fatalf("Logger must default to a no-op logger")
	}
	cfg.Report(NewError(KindLookup, "x", "k", "", nil))

	cfg = NewConfig(WithMaxDepth(4))
	if cfg.MaxDepth != 4 {
		t.Fatalf("MaxDepth = %d, want 4", cfg.MaxDepth)
	}
}
