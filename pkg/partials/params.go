package partials

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedParameters is wrapped by every ParameterError.
var ErrMalformedParameters = errors.New("partials: malformed parameter list")

// ParameterError describes a parameter list that could not be parsed.
type ParameterError struct {
	Raw    string
	Offset int
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("partials: malformed parameter list (%s) at offset %d: %s", e.Raw, e.Offset, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrMalformedParameters
}

// ParseParameters parses the inside of an include parameter list:
//
//	name: "value", other: 'it\'s', flag: true, count: 3
//
// Names may be quoted. A quote only closes a value when it is followed by a
// comma or the end of the list, so unescaped apostrophes inside single
// quoted prose survive.
func ParseParameters(raw string) (map[string]any, error) {
	p := paramParser{src: raw}
	out := make(map[string]any)

	for {
		p.skipSpaces()
		if p.eof() {
			return out, nil
		}

		name, err := p.parseName()
		if err != nil {
			return nil, err
		}

		p.skipSpaces()
		if p.eof() || p.src[p.pos] != ':' {
			return nil, p.fail(fmt.Sprintf("expected ':' after %q", name))
		}
		p.pos++
		p.skipSpaces()

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out[name] = value

		p.skipSpaces()
		if p.eof() {
			return out, nil
		}
		if p.src[p.pos] != ',' {
			return nil, p.fail(fmt.Sprintf("expected ',' after value of %q", name))
		}
		p.pos++
	}
}

type paramParser struct {
	src string
	pos int
}

func (p *paramParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *paramParser) skipSpaces() {
	p.pos = skipSpaces(p.src, p.pos)
}

func (p *paramParser) fail(reason string) error {
	return &ParameterError{Raw: p.src, Offset: p.pos, Reason: reason}
}

func (p *paramParser) parseName() (string, error) {
	c := p.src[p.pos]
	if c == '"' || c == '\'' {
		end := strings.IndexByte(p.src[p.pos+1:], c)
		if end < 0 {
			return "", p.fail("unterminated parameter name")
		}
		name := p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		if strings.TrimSpace(name) == "" {
			return "", p.fail("empty parameter name")
		}
		return name, nil
	}

	start := p.pos
	for !p.eof() && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.fail(fmt.Sprintf("unexpected %q", c))
	}
	return p.src[start:p.pos], nil
}

func (p *paramParser) parseValue() (any, error) {
	if p.eof() {
		return nil, p.fail("missing value")
	}
	quote := p.src[p.pos]
	if quote == '"' || quote == '\'' {
		return p.parseQuoted(quote)
	}

	start := p.pos
	for !p.eof() && p.src[p.pos] != ',' {
		p.pos++
	}
	literal := strings.TrimSpace(p.src[start:p.pos])
	switch literal {
	case "":
		return nil, p.fail("missing value")
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return int(n), nil
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return f, nil
	}
	p.pos = start
	return nil, p.fail(fmt.Sprintf("unquoted value %q", literal))
}

func (p *paramParser) parseQuoted(quote byte) (string, error) {
	open := p.pos
	for i := open + 1; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			i++
		case quote:
			next := skipSpaces(p.src, i+1)
			if next < len(p.src) && p.src[next] != ',' {
				continue
			}
			p.pos = i + 1
			return unescape(p.src[open+1:i], quote), nil
		}
	}
	p.pos = open
	return "", p.fail("unterminated quoted value")
}

func unescape(s string, quote byte) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			next := s[i+1]
			if next == quote || next == '\\' || next == '"' || next == '\'' {
				b.WriteByte(next)
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isNameByte(c byte) bool {
	return isAlnum(c) || c == '_' || c == '-' || c == '$'
}
