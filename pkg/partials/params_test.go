package partials

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseParameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{name: "empty", raw: "  ", want: map[string]any{}},
		{name: "double quoted", raw: `name: "world"`, want: map[string]any{"name": "world"}},
		{name: "single quoted", raw: `name: 'world'`, want: map[string]any{"name": "world"}},
		{name: "escaped double", raw: `quote: "say \"hi\""`, want: map[string]any{"quote": `say "hi"`}},
		{name: "escaped single", raw: `msg: 'That\'s no moon'`, want: map[string]any{"msg": "That's no moon"}},
		{name: "bare apostrophe", raw: `msg: 'That's no moon'`, want: map[string]any{"msg": "That's no moon"}},
		{name: "quoted names", raw: `"first-name": "Ada", 'last': "Lovelace"`, want: map[string]any{"first-name": "Ada", "last": "Lovelace"}},
		{name: "comma inside value", raw: `a: "x, y", b: 'z'`, want: map[string]any{"a": "x, y", "b": "z"}},
		{name: "literals", raw: `on: true, off: false, n: 42, f: 1.5`, want: map[string]any{"on": true, "off": false, "n": 42, "f": 1.5}},
		{name: "trailing comma", raw: `a: "1",`, want: map[string]any{"a": "1"}},
		{name: "multiline", raw: "a: \"1\",\n\tb: \"2\"", want: map[string]any{"a": "1", "b": "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseParameters(tt.raw)
			if err != nil {
				t.Fatalf("ParseParameters(%q): %v", tt.raw, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseParametersErrors(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`name: "open`,
		`name 'x'`,
		`name:`,
		`: "x"`,
		`a: "1" b`,
		`"open: "x"`,
		`a: nope`,
	} {
		if _, err := ParseParameters(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
