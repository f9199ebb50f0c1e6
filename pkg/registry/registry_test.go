package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	t.Parallel()

	reg := New()
	if err := reg.Register("atoms-helloworld", "Hello <%= name %>!\n"); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := reg.Lookup("atoms-helloworld")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != "Hello <%= name %>!\n" {
		t.Fatalf("unexpected template %q", got)
	}

	if _, err := reg.Lookup(" atoms-helloworld "); err != nil {
		t.Fatalf("lookup with padded key: %v", err)
	}
}

func TestRegistryLastWriteWins(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.MustRegister("atoms-button", "first")
	reg.MustRegister("atoms-button", "second")

	got, err := reg.Lookup("atoms-button")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != "second" {
		t.Fatalf("expected last write to win, got %q", got)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", reg.Len())
	}
}

func TestRegistryLookupMissing(t *testing.T) {
	t.Parallel()

	reg := New()
	_, err := reg.Lookup("nonexistent-atom")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var nilRegistry *Registry
	if _, err := nilRegistry.Lookup("x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from nil registry, got %v", err)
	}
}

func TestRegistryRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	if err := New().Register("  ", "tpl"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestRegistrySnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.MustRegister("atoms-a", "a")
	snap := reg.Snapshot()

	reg.MustRegister("atoms-b", "b")
	snap.MustRegister("atoms-a", "changed")

	if snap.Has("atoms-b") {
		t.Fatalf("snapshot observed later registration")
	}
	got, _ := reg.Lookup("atoms-a")
	if got != "a" {
		t.Fatalf("original mutated through snapshot: %q", got)
	}
}

func TestRegistryConcurrentRegistration(t *testing.T) {
	t.Parallel()

	reg := New()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.MustRegister(fmt.Sprintf("atoms-%02d", i), fmt.Sprintf("tpl %d", i))
			reg.MustRegister("atoms-shared", "shared")
		}(i)
	}
	wg.Wait()

	if reg.Len() != 51 {
		t.Fatalf("expected 51 entries, got %d", reg.Len())
	}
	keys := reg.Keys()
	if keys[0] != "atoms-00" || keys[len(keys)-1] != "atoms-shared" {
		t.Fatalf("unexpected key order: %v", keys)
	}

	reg.Reset()
	if diff := cmp.Diff([]string{}, reg.Keys()); diff != "" {
		t.Fatalf("keys after reset (-want +got):\n%s", diff)
	}
}
