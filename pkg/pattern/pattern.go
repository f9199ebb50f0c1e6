package pattern

import (
	"path"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var orderPrefix = regexp.MustCompile(`^\d+-`)

// Pattern is a single reusable markup fragment discovered in the pattern
// source tree.
type Pattern struct {
	// RelPath is the slash separated path relative to the patterns root,
	// e.g. "00-atoms/00-global/00-helloworld.html".
	RelPath string
	// Key is the stable registry key, e.g. "atoms-helloworld".
	Key string
	// Template is the raw template text.
	Template string
	// Data is the optional pattern data loaded next to the template.
	Data map[string]any
	// Engine names the engine that owns the template syntax.
	Engine string
}

// New creates a pattern for relPath, deriving its key.
func New(relPath, template string, data map[string]any) *Pattern {
	relPath = path.Clean(strings.ReplaceAll(relPath, `\`, "/"))
	return &Pattern{
		RelPath:  relPath,
		Key:      KeyFromPath(relPath),
		Template: template,
		Data:     data,
	}
}

// KeyFromPath derives the registry key for a pattern path: the top level
// group and the file name, both without numeric ordering prefixes, joined by
// a dash.
//
//	00-atoms/00-global/00-helloworld.html    -> atoms-helloworld
//	01-molecules/00-testing/00-test-mol.html -> molecules-test-mol
//	helloworld.html                          -> helloworld
func KeyFromPath(relPath string) string {
	relPath = strings.Trim(path.Clean(strings.ReplaceAll(relPath, `\`, "/")), "/")
	dir, file := path.Split(relPath)
	name := clean(strings.TrimSuffix(file, path.Ext(file)))

	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}
	group := dir
	if idx := strings.IndexByte(dir, '/'); idx >= 0 {
		group = dir[:idx]
	}
	group = clean(group)
	if group == "" {
		return name
	}
	return group + "-" + name
}

// VerbosePath returns the relative path without the file extension, the form
// used by verbose includes such as {{> 00-atoms/00-global/00-helloworld }}.
func (p *Pattern) VerbosePath() string {
	return strings.TrimSuffix(p.RelPath, path.Ext(p.RelPath))
}

// Group returns the top level group name without its ordering prefix.
func (p *Pattern) Group() string {
	dir := path.Dir(p.RelPath)
	if dir == "." {
		return ""
	}
	if idx := strings.IndexByte(dir, '/'); idx >= 0 {
		dir = dir[:idx]
	}
	return clean(dir)
}

func clean(segment string) string {
	return slug.Make(orderPrefix.ReplaceAllString(segment, ""))
}
