package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestFragmentEscapesContent(t *testing.T) {
	t.Parallel()

	err := NewError(KindCompile, "underscore", "atoms-broken", "<script>alert(1)</script><%= x",
		errors.New("unexpected <b>tag</b>"))
	out := Fragment(err)

	if strings.Contains(out, "<script>") || strings.Contains(out, "<b>") {
		t.Fatalf("fragment leaked markup: %s", out)
	}
	for _, want := range []string{
		`<div class="pl-error pl-error-compile">`,
		"<h1>Error in underscore template atoms-broken</h1>",
		"&lt;script&gt;",
		"&lt;b&gt;tag&lt;/b&gt;",
		"<pre><code>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("fragment missing %q:\n%s", want, out)
		}
	}
}

func TestFragmentOmitsEmptySections(t *testing.T) {
	t.Parallel()

	out := Fragment(&Error{Kind: KindLookup, Key: "atoms-nonexistent"})
	if strings.Contains(out, "<pre>") || strings.Contains(out, "<p>") {
		t.Fatalf("unexpected sections: %s", out)
	}
	if !strings.Contains(out, "atoms-nonexistent") {
		t.Fatalf("fragment missing key: %s", out)
	}
	if Fragment(nil) != "" {
		t.Fatalf("nil error should produce no fragment")
	}
}
