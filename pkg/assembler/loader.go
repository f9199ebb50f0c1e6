package assembler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-patternlab/pkg/datacontext"
	"github.com/goliatone/go-patternlab/pkg/pattern"
)

// dataExtensions are tried in order for a pattern's sibling data file.
var dataExtensions = []string{".json", ".yaml", ".yml"}

// Library is the set of patterns discovered in a source tree.
type Library struct {
	// Patterns are ordered by relative path.
	Patterns []*pattern.Pattern
	// GlobalData is merged under every pattern's own data.
	GlobalData map[string]any

	byKey map[string]*pattern.Pattern
}

// Pattern returns the pattern registered under key or verbose path.
func (l *Library) Pattern(key string) (*pattern.Pattern, bool) {
	if l == nil {
		return nil, false
	}
	p, ok := l.byKey[strings.TrimSpace(key)]
	return p, ok
}

// Load walks fsys and collects every file owned by a registered engine.
// Files and directories whose name starts with "_" are skipped, except the
// data directory, whose JSON and YAML files become the global data.
func (a *Assembler) Load(fsys fs.FS) (*Library, error) {
	if fsys == nil {
		return nil, errors.New("assembler: source fs is required")
	}

	lib := &Library{
		GlobalData: make(map[string]any),
		byKey:      make(map[string]*pattern.Pattern),
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if name == "." {
			return nil
		}
		if a.ignored(name) {
			a.cfg.logger.Debug("ignoring path", "path", name)
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			if name == a.cfg.dataDir {
				if err := loadGlobalData(fsys, name, lib.GlobalData); err != nil {
					return err
				}
				return fs.SkipDir
			}
			if strings.HasPrefix(entry.Name(), "_") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(entry.Name(), "_") {
			return nil
		}

		eng, ok := a.engines.ForPath(name)
		if !ok {
			return nil
		}

		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("assembler: read %s: %w", name, err)
		}
		data, err := loadPatternData(fsys, strings.TrimSuffix(name, path.Ext(name)))
		if err != nil {
			return err
		}

		p := pattern.New(name, string(raw), data)
		p.Engine = eng.Name()
		if prev, exists := lib.byKey[p.Key]; exists {
			a.cfg.logger.Warn("duplicate pattern key", "key", p.Key, "path", name, "previous", prev.RelPath)
		}
		lib.Patterns = append(lib.Patterns, p)
		lib.byKey[p.Key] = p
		lib.byKey[p.VerbosePath()] = p
		lib.byKey[p.RelPath] = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(lib.Patterns, func(x, y *pattern.Pattern) int {
		return strings.Compare(x.RelPath, y.RelPath)
	})
	a.cfg.logger.Debug("patterns loaded", "count", len(lib.Patterns), "globals", len(lib.GlobalData))
	return lib, nil
}

func (a *Assembler) ignored(name string) bool {
	for _, glob := range a.cfg.ignore {
		if ok, _ := doublestar.Match(glob, name); ok {
			return true
		}
	}
	return false
}

func loadPatternData(fsys fs.FS, base string) (map[string]any, error) {
	for _, ext := range dataExtensions {
		data, err := readData(fsys, base+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return data, err
	}
	return nil, nil
}

func loadGlobalData(fsys fs.FS, dir string, into map[string]any) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("assembler: read data dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !slices.Contains(dataExtensions, path.Ext(entry.Name())) {
			continue
		}
		data, err := readData(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		maps.Copy(into, data)
	}
	return nil
}

func readData(fsys fs.FS, name string) (map[string]any, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	switch path.Ext(name) {
	case ".json":
		err = json.Unmarshal(raw, &data)
	default:
		err = yaml.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("assembler: decode %s: %w", name, err)
	}
	return datacontext.Clean(data), nil
}
