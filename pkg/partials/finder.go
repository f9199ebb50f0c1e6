package partials

import (
	"iter"
	"slices"
	"strings"
)

const (
	openMarker  = "{{>"
	closeMarker = "}}"
)

// Reference is one partial include found in a template, e.g.
//
//	{{> molecules-media-block:featured(title: "Hello", compact: true) }}
//
// Start and End are byte offsets of Match within the scanned text.
type Reference struct {
	Match     string
	Key       string
	Modifier  string
	Params    map[string]any
	RawParams string
	HasParams bool
	Err       error
	Start     int
	End       int
}

// StyleClasses returns the style modifier as a space separated class list.
// Multiple modifiers are written key:one|two.
func (r Reference) StyleClasses() string {
	return strings.ReplaceAll(r.Modifier, "|", " ")
}

// Scan lazily yields every partial include in text, left to right. It only
// looks at the text; it never consults a registry.
func Scan(text string) iter.Seq[Reference] {
	return func(yield func(Reference) bool) {
		offset := 0
		for offset < len(text) {
			idx := strings.Index(text[offset:], openMarker)
			if idx < 0 {
				return
			}
			start := offset + idx
			ref, ok := scanAt(text, start)
			if !ok {
				offset = start + len(openMarker)
				continue
			}
			if !yield(ref) {
				return
			}
			offset = ref.End
		}
	}
}

// FindPartials returns every partial include in source order.
func FindPartials(text string) []Reference {
	return slices.Collect(Scan(text))
}

// FindPartialsWithStyleModifiers returns the includes that carry a :modifier
// suffix.
func FindPartialsWithStyleModifiers(text string) []Reference {
	var out []Reference
	for ref := range Scan(text) {
		if ref.Modifier != "" {
			out = append(out, ref)
		}
	}
	return out
}

// FindPartialsWithPatternParameters returns the includes that carry a
// parenthesised parameter list, including malformed ones (see Reference.Err).
func FindPartialsWithPatternParameters(text string) []Reference {
	var out []Reference
	for ref := range Scan(text) {
		if ref.HasParams {
			out = append(out, ref)
		}
	}
	return out
}

// FindPartialKey extracts the registry key from a full include match. It
// returns an empty string when match is not an include.
func FindPartialKey(match string) string {
	for ref := range Scan(match) {
		return ref.Key
	}
	return ""
}

// Replace rewrites text, substituting each reference (as returned by Scan
// over the same text) with the output of fn.
func Replace(text string, refs []Reference, fn func(i int, ref Reference) string) string {
	if len(refs) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for i, ref := range refs {
		if ref.Start < last || ref.End > len(text) {
			continue
		}
		b.WriteString(text[last:ref.Start])
		b.WriteString(fn(i, ref))
		last = ref.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func scanAt(text string, start int) (Reference, bool) {
	i := skipSpaces(text, start+len(openMarker))

	keyStart := i
	for i < len(text) && isKeyByte(text[i]) {
		i++
	}
	if i == keyStart {
		return Reference{}, false
	}
	ref := Reference{Start: start, Key: text[keyStart:i]}

	if i < len(text) && text[i] == ':' {
		modStart := i + 1
		j := modStart
		for j < len(text) && isModifierByte(text[j]) {
			j++
		}
		if j == modStart {
			return Reference{}, false
		}
		ref.Modifier = text[modStart:j]
		i = j
	}

	i = skipSpaces(text, i)
	if i < len(text) && text[i] == '(' {
		ref.HasParams = true
		if end, ok := paramsEnd(text, i); ok && strings.HasPrefix(text[skipSpaces(text, end):], closeMarker) {
			ref.RawParams = text[i+1 : end-1]
			ref.Params, ref.Err = ParseParameters(ref.RawParams)
			i = skipSpaces(text, end)
		} else {
			// Unbalanced list: it ends at the first closing marker.
			end := strings.Index(text[i:], closeMarker)
			if end < 0 {
				return Reference{}, false
			}
			end += i
			segment := strings.TrimRight(text[i:end], " \t\r\n")
			if len(segment) < 2 || !strings.HasSuffix(segment, ")") {
				ref.RawParams = segment[1:]
				ref.Err = &ParameterError{Raw: ref.RawParams, Reason: "missing closing parenthesis"}
			} else {
				ref.RawParams = segment[1 : len(segment)-1]
				ref.Params, ref.Err = ParseParameters(ref.RawParams)
			}
			i = end
		}
	}

	if !strings.HasPrefix(text[i:], closeMarker) {
		return Reference{}, false
	}
	ref.End = i + len(closeMarker)
	ref.Match = text[start:ref.End]
	return ref, true
}

// paramsEnd returns the offset just past the ')' that closes the parameter
// list opened at text[open]. Quoted values are skipped with the rule
// ParseParameters applies: a quote only closes when the next non-space byte
// is ',', ':' or ')'. The list must close before the next include marker.
func paramsEnd(text string, open int) (int, bool) {
	var quote byte
	depth := 0
	for i := open; i < len(text); i++ {
		c := text[i]
		if c == '{' && strings.HasPrefix(text[i:], openMarker) {
			return 0, false
		}
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				next := skipSpaces(text, i+1)
				if next < len(text) && strings.IndexByte(",:)", text[next]) >= 0 {
					quote = 0
				}
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func skipSpaces(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isKeyByte(c byte) bool {
	return isAlnum(c) || c == '_' || c == '-' || c == '.' || c == '/' || c == '~'
}

func isModifierByte(c byte) bool {
	return isAlnum(c) || c == '_' || c == '-' || c == '|'
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
