package django

import (
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-patternlab/pkg/engine"
	"github.com/goliatone/go-patternlab/pkg/listitems"
	"github.com/goliatone/go-patternlab/pkg/registry"
)

// chainSep joins the include chain into the template name handed to pongo2,
// so Get can tell how deep an include is nested.
const chainSep = " > "

// registryLoader serves {% include %} tags from a partial registry. A miss
// never fails the parent template: Get returns an inline error fragment as
// the partial's text and records the failure.
type registryLoader struct {
	partials *registry.Registry
	// root is the template being rendered, the parent of first level
	// includes.
	root     string
	maxDepth int
	fail     func(kind engine.Kind, key, src string, err error) *engine.Error
}

var _ pongo2.TemplateLoader = (*registryLoader)(nil)

func (l *registryLoader) Abs(base, name string) string {
	if base == "" {
		return name
	}
	return base + chainSep + name
}

func (l *registryLoader) Get(name string) (io.Reader, error) {
	chain := strings.Split(name, chainSep)
	key := chain[len(chain)-1]

	if len(chain) > l.maxDepth {
		err := fmt.Errorf("partial nesting exceeds %d levels", l.maxDepth)
		return fragmentReader(l.fail(engine.KindEvaluation, key, l.parent(chain), err)), nil
	}

	src, err := l.partials.Lookup(key)
	if err != nil {
		return fragmentReader(l.fail(engine.KindLookup, key, l.parent(chain), err)), nil
	}
	src = listitems.Expand(src)
	if err := validate(src); err != nil {
		return fragmentReader(l.fail(engine.KindCompile, key, src, err)), nil
	}
	return strings.NewReader(src), nil
}

// parent returns the text of the template holding the include at the end of
// chain.
func (l *registryLoader) parent(chain []string) string {
	if len(chain) < 2 {
		return l.root
	}
	src, err := l.partials.Lookup(chain[len(chain)-2])
	if err != nil {
		return ""
	}
	return src
}

// validate parses src on its own, with every include resolving to an empty
// template, so syntax errors are attributed to the partial that has them.
func validate(src string) error {
	_, err := pongo2.NewSet("validate", emptyLoader{}).FromString(src)
	return err
}

type emptyLoader struct{}

func (emptyLoader) Abs(_, name string) string     { return name }
func (emptyLoader) Get(string) (io.Reader, error) { return strings.NewReader(""), nil }

var fragmentBraces = strings.NewReplacer("{", "&#123;", "}", "&#125;")

// fragmentReader returns an error fragment that pongo2 reads as plain text.
func fragmentReader(err *engine.Error) io.Reader {
	return strings.NewReader(fragmentBraces.Replace(engine.Fragment(err)))
}
