package underscore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-patternlab/pkg/datacontext"
	"github.com/goliatone/go-patternlab/pkg/partials"
)

const (
	leftDelim  = "<%="
	rightDelim = "%>"

	callPrefix = "_.renderPartial"

	// wholeContext is the underscore name for the data object itself.
	wholeContext = "obj"
	// allData reaches the data the top level pattern was rendered with.
	allData = "_allData"
)

var (
	errUnterminatedTag = errors.New("unterminated tag")
	errEvaluateBlock   = errors.New("evaluate blocks are not supported")
	errEmptyTag        = errors.New("empty interpolation")
)

type tokenKind int

const (
	textToken tokenKind = iota
	interpolateToken
	escapeToken
	evaluateToken
)

type token struct {
	kind tokenKind
	// text is the raw text of a text token or the trimmed body of a tag.
	text  string
	start int
	end   int
}

// tokenize splits src into text and tag tokens. On error the tokens read so
// far are returned together with the error.
func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		idx := strings.Index(src[i:], "<%")
		if idx < 0 {
			tokens = append(tokens, token{kind: textToken, text: src[i:], start: i, end: len(src)})
			break
		}
		if idx > 0 {
			tokens = append(tokens, token{kind: textToken, text: src[i : i+idx], start: i, end: i + idx})
		}
		start := i + idx
		j := start + 2
		kind := evaluateToken
		if j < len(src) {
			switch src[j] {
			case '=':
				kind = interpolateToken
				j++
			case '-':
				kind = escapeToken
				j++
			}
		}
		end := strings.Index(src[j:], rightDelim)
		if end < 0 {
			return tokens, fmt.Errorf("%w at offset %d", errUnterminatedTag, start)
		}
		end += j
		tokens = append(tokens, token{
			kind:  kind,
			text:  strings.TrimSpace(src[j:end]),
			start: start,
			end:   end + len(rightDelim),
		})
		i = end + len(rightDelim)
	}
	return tokens, nil
}

// program is an underscore template rewritten as text/template source.
type program struct {
	source string
	// includes holds the {{> key }} references, indexed by the argument of
	// the includePartial calls in source.
	includes []partials.Reference
}

// translate rewrites an underscore template into text/template source using
// <%= %> delimiters. Only property paths, filter chains and renderPartial
// calls are accepted inside tags.
func translate(src string) (*program, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	prog := &program{}
	var b strings.Builder
	b.Grow(len(src))
	for _, tok := range tokens {
		switch tok.kind {
		case textToken:
			prog.writeText(&b, tok.text)
		case evaluateToken:
			return nil, fmt.Errorf("%w: %q", errEvaluateBlock, src[tok.start:tok.end])
		case interpolateToken, escapeToken:
			action, err := translateTag(tok.text)
			if err != nil {
				return nil, fmt.Errorf("%w in %q", err, src[tok.start:tok.end])
			}
			b.WriteString(leftDelim)
			b.WriteByte(' ')
			b.WriteString(action)
			if tok.kind == escapeToken {
				b.WriteString(" | html")
			}
			b.WriteByte(' ')
			b.WriteString(rightDelim)
		}
	}
	prog.source = b.String()
	return prog, nil
}

func (p *program) writeText(b *strings.Builder, text string) {
	last := 0
	for ref := range partials.Scan(text) {
		b.WriteString(text[last:ref.Start])
		fmt.Fprintf(b, "%s includePartial %d %s", leftDelim, len(p.includes), rightDelim)
		p.includes = append(p.includes, ref)
		last = ref.End
	}
	b.WriteString(text[last:])
}

func translateTag(body string) (string, error) {
	if body == "" {
		return "", errEmptyTag
	}
	if strings.HasPrefix(body, callPrefix) {
		call, err := parseCall(body)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("renderPartial %s %s", strconv.Quote(call.key), strconv.Quote(call.dataPath)), nil
	}

	parts, err := splitTopLevel(body, '|')
	if err != nil {
		return "", err
	}
	path := strings.TrimSpace(parts[0])
	if err := validatePath(path); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("lookupPath ")
	b.WriteString(strconv.Quote(path))
	for _, part := range parts[1:] {
		filter, err := translateFilter(part)
		if err != nil {
			return "", err
		}
		b.WriteString(" | ")
		b.WriteString(filter)
	}
	return b.String(), nil
}

func validatePath(path string) error {
	if path == wholeContext || path == allData {
		return nil
	}
	if _, err := datacontext.ParsePath(path); err != nil {
		return err
	}
	return nil
}

// translateFilter turns `name arg1 arg2` into a text/template pipeline stage.
// Arguments must be literals.
func translateFilter(stage string) (string, error) {
	fields, err := splitFields(strings.TrimSpace(stage))
	if err != nil {
		return "", err
	}
	if len(fields) == 0 {
		return "", fmt.Errorf("empty filter")
	}
	name := fields[0]
	if !isIdentifier(name) {
		return "", fmt.Errorf("invalid filter name %q", name)
	}

	out := []string{name}
	for _, arg := range fields[1:] {
		literal, err := filterArgument(arg)
		if err != nil {
			return "", err
		}
		out = append(out, literal)
	}
	return strings.Join(out, " "), nil
}

func filterArgument(arg string) (string, error) {
	if value, ok := unquote(arg); ok {
		return strconv.Quote(value), nil
	}
	if arg == "true" || arg == "false" {
		return arg, nil
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return arg, nil
	}
	return "", fmt.Errorf("unsupported filter argument %q", arg)
}

// call is a parsed _.renderPartial(...) tag.
type call struct {
	key      string
	dataPath string
}

// parseCall accepts
//
//	_.renderPartial('key')
//	_.renderPartial("key", data.path)
//	_.renderPartial(_partials['key'], obj)
func parseCall(body string) (call, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(body, callPrefix))
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return call{}, fmt.Errorf("malformed %s call", callPrefix)
	}
	args, err := splitTopLevel(rest[1:len(rest)-1], ',')
	if err != nil {
		return call{}, err
	}
	if len(args) > 2 {
		return call{}, fmt.Errorf("%s takes at most two arguments", callPrefix)
	}

	key, err := partialKeyArgument(strings.TrimSpace(args[0]))
	if err != nil {
		return call{}, err
	}
	c := call{key: key}
	if len(args) == 2 {
		c.dataPath = strings.TrimSpace(args[1])
		if err := validatePath(c.dataPath); err != nil {
			return call{}, err
		}
	}
	return c, nil
}

// partialKeyArgument resolves the first renderPartial argument to a registry
// key. Quoted keys and string-indexed lookups such as _partials['key'] are
// accepted.
func partialKeyArgument(arg string) (string, error) {
	if key, ok := unquote(arg); ok && key != "" {
		return key, nil
	}
	if strings.HasSuffix(arg, "]") && len(arg) > 3 {
		quote := arg[len(arg)-2]
		if quote == '\'' || quote == '"' {
			open := strings.LastIndex(arg, "["+string(quote))
			if open > 0 {
				if _, err := datacontext.ParsePath(arg[:open]); err == nil {
					if key, ok := unquote(arg[open+1 : len(arg)-1]); ok && key != "" {
						return key, nil
					}
				}
			}
		}
	}
	return "", fmt.Errorf("unsupported partial reference %q", arg)
}

// splitTopLevel splits s on sep outside quotes, brackets and parentheses.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var (
		parts []string
		quote byte
		depth int
		last  int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string in %q", s)
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in %q", s)
	}
	return append(parts, s[last:]), nil
}

// splitFields splits s on spaces, keeping quoted strings whole.
func splitFields(s string) ([]string, error) {
	var fields []string
	for i := 0; i < len(s); {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		if c := s[i]; c == '\'' || c == '"' {
			i++
			for i < len(s) && s[i] != c {
				if s[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(s) {
				return nil, fmt.Errorf("unterminated string in %q", s)
			}
			i++
		} else {
			for i < len(s) && s[i] != ' ' {
				i++
			}
		}
		fields = append(fields, s[start:i])
	}
	return fields, nil
}

func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	quote := s[0]
	if (quote != '\'' && quote != '"') || s[len(s)-1] != quote {
		return "", false
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			i++
			b.WriteByte(inner[i])
			continue
		}
		if c == quote {
			return "", false
		}
		b.WriteByte(c)
	}
	return b.String(), true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

// findCalls returns the renderPartial calls of src as partial references.
// Tags that fail to parse are skipped.
func findCalls(src string) []partials.Reference {
	tokens, _ := tokenize(src)
	var refs []partials.Reference
	for _, tok := range tokens {
		if tok.kind != interpolateToken && tok.kind != escapeToken {
			continue
		}
		if !strings.HasPrefix(tok.text, callPrefix) {
			continue
		}
		c, err := parseCall(tok.text)
		if err != nil {
			continue
		}
		refs = append(refs, partials.Reference{
			Match:     src[tok.start:tok.end],
			Key:       c.key,
			RawParams: c.dataPath,
			Start:     tok.start,
			End:       tok.end,
		})
	}
	return refs
}
