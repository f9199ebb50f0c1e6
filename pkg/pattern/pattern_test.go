package pattern

import "testing"

func TestKeyFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"00-atoms/00-global/00-helloworld.html":               "atoms-helloworld",
		"00-atoms/00-global/00-helloworld-withdata.html":      "atoms-helloworld-withdata",
		"01-molecules/00-testing/00-test-mol.underscore":      "molecules-test-mol",
		`01-molecules\06-components\02-single-comment.django`: "molecules-single-comment",
		"02-organisms/Header Bar.html":                        "organisms-header-bar",
		"helloworld.html":                                     "helloworld",
		"/00-atoms/button.html":                               "atoms-button",
	}
	for in, want := range tests {
		if got := KeyFromPath(in); got != want {
			t.Fatalf("KeyFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPatternPaths(t *testing.T) {
	t.Parallel()

	p := New(`00-atoms\00-global\06-test.html`, "<p>test</p>", nil)
	if p.RelPath != "00-atoms/00-global/06-test.html" {
		t.Fatalf("unexpected rel path %q", p.RelPath)
	}
	if p.Key != "atoms-test" {
		t.Fatalf("unexpected key %q", p.Key)
	}
	if p.VerbosePath() != "00-atoms/00-global/06-test" {
		t.Fatalf("unexpected verbose path %q", p.VerbosePath())
	}
	if p.Group() != "atoms" {
		t.Fatalf("unexpected group %q", p.Group())
	}

	root := New("page.html", "", nil)
	if root.Group() != "" || root.Key != "page" {
		t.Fatalf("unexpected root pattern %#v", root)
	}
}
