package partials

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var verbosePartials = []string{
	`{{> 01-molecules/06-components/03-comment-header.underscore }}`,
	`{{> 01-molecules/06-components/02-single-comment.underscore(description: 'A life is like a garden. Perfect moments can be had, but not preserved, except in memory.') }}`,
	`{{> molecules-single-comment:foo }}`,
	`{{>atoms-error(message: 'That's no moon...')}}`,
	`{{> atoms-error(message: 'That\'s no moon...') }}`,
	`{{> 00-atoms/00-global/06-test }}`,
}

func TestFindPartialsVerboseSyntax(t *testing.T) {
	t.Parallel()

	refs := FindPartials(strings.Join(verbosePartials, ","))
	if len(refs) != len(verbosePartials) {
		t.Fatalf("expected %d partials, got %d", len(verbosePartials), len(refs))
	}
	for i, ref := range refs {
		if ref.Match != verbosePartials[i] {
			t.Fatalf("partial %d mismatch\nwant: %q\n got: %q", i, verbosePartials[i], ref.Match)
		}
		if ref.Err != nil {
			t.Fatalf("partial %d unexpected error: %v", i, ref.Err)
		}
	}
}

func TestFindPartialsNone(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"",
		"<p>Hello <%= name %>!</p>",
		"{{ notAPartial }} {{#listItems.three}}x{{/listItems.three}}",
		"{{> }}",
		"{{>atoms-open",
	} {
		if refs := FindPartials(text); len(refs) != 0 {
			t.Fatalf("expected no partials in %q, got %#v", text, refs)
		}
	}
}

func TestFindPartialKeyRecoversKeysInOrder(t *testing.T) {
	t.Parallel()

	text := strings.Join(verbosePartials, "\n<hr>\n")
	var got []string
	for _, ref := range FindPartials(text) {
		key := FindPartialKey(ref.Match)
		if key != ref.Key {
			t.Fatalf("FindPartialKey(%q) = %q, want %q", ref.Match, key, ref.Key)
		}
		got = append(got, key)
	}

	want := []string{
		"01-molecules/06-components/03-comment-header.underscore",
		"01-molecules/06-components/02-single-comment.underscore",
		"molecules-single-comment",
		"atoms-error",
		"atoms-error",
		"00-atoms/00-global/06-test",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	if key := FindPartialKey("plain text"); key != "" {
		t.Fatalf("expected empty key for non-include, got %q", key)
	}
}

func TestFindPartialsWithStyleModifiers(t *testing.T) {
	t.Parallel()

	text := `{{> atoms-button }} {{> atoms-button:primary|large }} {{> atoms-button:ghost(label: "Go") }}`
	refs := FindPartialsWithStyleModifiers(text)
	if len(refs) != 2 {
		t.Fatalf("expected 2 modified partials, got %d", len(refs))
	}
	if refs[0].Modifier != "primary|large" || refs[0].StyleClasses() != "primary large" {
		t.Fatalf("unexpected modifier %q", refs[0].Modifier)
	}
	if refs[1].Key != "atoms-button" || refs[1].Modifier != "ghost" {
		t.Fatalf("unexpected reference %#v", refs[1])
	}
	if diff := cmp.Diff(map[string]any{"label": "Go"}, refs[1].Params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestFindPartialsWithPatternParameters(t *testing.T) {
	t.Parallel()

	text := `{{> atoms-helloworld }}{{> atoms-helloworld(name: "world", count: 3, visible: false) }}`
	refs := FindPartialsWithPatternParameters(text)
	if len(refs) != 1 {
		t.Fatalf("expected 1 parameterised partial, got %d", len(refs))
	}
	want := map[string]any{"name": "world", "count": 3, "visible": false}
	if diff := cmp.Diff(want, refs[0].Params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestFindPartialsQuotedValuesMayHoldMarkers(t *testing.T) {
	t.Parallel()

	text := `<p>{{> atoms-x(text: "a}}b") }}</p>{{> atoms-y(label: 'close (x)', html: "<b>{{ y }}</b>") }}`
	refs := FindPartials(text)
	if len(refs) != 2 {
		t.Fatalf("expected 2 partials, got %#v", refs)
	}

	if refs[0].Match != `{{> atoms-x(text: "a}}b") }}` {
		t.Fatalf("first match = %q", refs[0].Match)
	}
	if refs[0].Err != nil {
		t.Fatalf("unexpected error: %v", refs[0].Err)
	}
	if diff := cmp.Diff(map[string]any{"text": "a}}b"}, refs[0].Params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}

	want := map[string]any{"label": "close (x)", "html": "<b>{{ y }}</b>"}
	if diff := cmp.Diff(want, refs[1].Params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
	if FindPartialKey(refs[1].Match) != "atoms-y" {
		t.Fatalf("key not recovered from %q", refs[1].Match)
	}
	if got := text[refs[1].End:]; got != "" {
		t.Fatalf("trailing text = %q", got)
	}
}

func TestFindPartialsUnterminatedQuoteStopsAtNextInclude(t *testing.T) {
	t.Parallel()

	text := `{{> atoms-error(message: 'oops) }}|{{> atoms-error(message: 'ok') }}`
	refs := FindPartials(text)
	if len(refs) != 2 {
		t.Fatalf("expected 2 partials, got %#v", refs)
	}
	if !errors.Is(refs[0].Err, ErrMalformedParameters) {
		t.Fatalf("expected malformed parameter error, got %v", refs[0].Err)
	}
	if refs[1].Err != nil || refs[1].Params["message"] != "ok" {
		t.Fatalf("second include = %#v", refs[1])
	}
}

func TestFindPartialsMalformedParameters(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unterminated quote": `{{> atoms-helloworld(name: "world) }}`,
		"missing paren":      `{{> atoms-helloworld(name: "world" }}`,
		"missing colon":      `{{> atoms-helloworld(name "world") }}`,
		"bare word":          `{{> atoms-helloworld(name: world) }}`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			refs := FindPartials(text)
			if len(refs) != 1 {
				t.Fatalf("expected the include to be discovered, got %d", len(refs))
			}
			ref := refs[0]
			if ref.Key != "atoms-helloworld" {
				t.Fatalf("unexpected key %q", ref.Key)
			}
			if !errors.Is(ref.Err, ErrMalformedParameters) {
				t.Fatalf("expected malformed parameter error, got %v", ref.Err)
			}
			var perr *ParameterError
			if !errors.As(ref.Err, &perr) {
				t.Fatalf("expected *ParameterError, got %T", ref.Err)
			}
			if ref.Params != nil {
				t.Fatalf("malformed list must not produce params: %#v", ref.Params)
			}
		})
	}
}

func TestScanIsDeterministicAndStoppable(t *testing.T) {
	t.Parallel()

	text := `{{> a }}{{> b }}{{> c }}`
	first := FindPartials(text)
	second := FindPartials(text)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("scan not deterministic (-first +second):\n%s", diff)
	}

	var seen []string
	for ref := range Scan(text) {
		seen = append(seen, ref.Key)
		if len(seen) == 2 {
			break
		}
	}
	if diff := cmp.Diff([]string{"a", "b"}, seen); diff != "" {
		t.Fatalf("early stop mismatch (-want +got):\n%s", diff)
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()

	text := `<div>{{> atoms-a }} and {{> atoms-b(x: "1") }}</div>`
	refs := FindPartials(text)
	got := Replace(text, refs, func(_ int, ref Reference) string {
		return "[" + ref.Key + "]"
	})
	if got != "<div>[atoms-a] and [atoms-b]</div>" {
		t.Fatalf("unexpected replacement %q", got)
	}
	if Replace(text, nil, nil) != text {
		t.Fatalf("replace without refs must return the input")
	}
}
