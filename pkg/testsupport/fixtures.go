package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-patternlab/pkg/engine"
	"github.com/goliatone/go-patternlab/pkg/pattern"
	"github.com/goliatone/go-patternlab/pkg/registry"
)

// LoadPatterns reads every template with the given extension from fsys. A
// sibling .json file with the same base name becomes the pattern data.
func LoadPatterns(fsys fs.FS, ext string) ([]*pattern.Pattern, error) {
	if fsys == nil {
		return nil, errors.New("testsupport: pattern fs is required")
	}
	var out []*pattern.Pattern
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(name) != ext {
			return nil
		}
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("testsupport: read %s: %w", name, err)
		}
		data, err := loadData(fsys, strings.TrimSuffix(name, ext)+".json")
		if err != nil {
			return err
		}
		p := pattern.New(name, string(raw), data)
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadData(fsys fs.FS, name string) (map[string]any, error) {
	raw, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("testsupport: read %s: %w", name, err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("testsupport: decode %s: %w", name, err)
	}
	return data, nil
}

// MustRegisterPatterns loads the fixtures under dir and registers them with
// eng, returning the registry and the patterns by key.
func MustRegisterPatterns(t *testing.T, dir string, eng engine.Engine) (*registry.Registry, map[string]*pattern.Pattern) {
	t.Helper()

	patterns, err := LoadPatterns(os.DirFS(dir), eng.FileExtension())
	if err != nil {
		t.Fatalf("load patterns: %v", err)
	}
	reg := registry.New()
	byKey := make(map[string]*pattern.Pattern, len(patterns))
	for _, p := range patterns {
		p.Engine = eng.Name()
		if err := eng.RegisterPartial(reg, p); err != nil {
			t.Fatalf("register %s: %v", p.RelPath, err)
		}
		byKey[p.Key] = p
	}
	return reg, byKey
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// Kinds lists the kinds of a render result's diagnostics, in order.
func Kinds(result engine.Result) []engine.Kind {
	kinds := make([]engine.Kind, 0, len(result.Errors))
	for _, err := range result.Errors {
		kinds = append(kinds, err.Kind)
	}
	return kinds
}
