package datacontext

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidPath is wrapped by ParsePath errors.
var ErrInvalidPath = errors.New("datacontext: invalid path")

// ParsePath splits a property path into segments. Supported forms:
//
//	name
//	user.address.city
//	items[0].title
//	templates["delivery/auth"]
//	templates['delivery/auth'].body
//
// Anything else (calls, operators, spaces inside segments) is rejected.
func ParsePath(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var segments []string
	i := 0
	expectSegment := true
	for i < len(path) {
		c := path[i]
		switch {
		case c == '.':
			if expectSegment {
				return nil, fmt.Errorf("%w: unexpected '.' in %q", ErrInvalidPath, path)
			}
			expectSegment = true
			i++
		case c == '[':
			if len(segments) == 0 {
				return nil, fmt.Errorf("%w: %q starts with an index", ErrInvalidPath, path)
			}
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated index in %q", ErrInvalidPath, path)
			}
			inner := strings.TrimSpace(path[i+1 : i+end])
			segment, err := indexSegment(inner)
			if err != nil {
				return nil, fmt.Errorf("%w: %v in %q", ErrInvalidPath, err, path)
			}
			segments = append(segments, segment)
			i += end + 1
			expectSegment = false
		case isIdentByte(c):
			if !expectSegment {
				return nil, fmt.Errorf("%w: missing '.' before %q in %q", ErrInvalidPath, path[i:], path)
			}
			start := i
			for i < len(path) && isIdentByte(path[i]) {
				i++
			}
			segments = append(segments, path[start:i])
			expectSegment = false
		default:
			return nil, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidPath, c, path)
		}
	}
	if expectSegment {
		return nil, fmt.Errorf("%w: %q ends with '.'", ErrInvalidPath, path)
	}
	return segments, nil
}

// Lookup resolves path against data without evaluating any code. The exact
// dotted key is tried first; otherwise the path is validated by ParsePath
// and resolved over the JSON form of data. Numbers come back as float64,
// or int64 when integral. The second result is false when the path does not
// resolve.
func Lookup(data any, path string) (any, bool) {
	if values, ok := Normalize(data); ok {
		if v, exists := values[strings.TrimSpace(path)]; exists {
			return v, true
		}
	}

	segments, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, false
	}
	result := gjson.GetBytes(raw, gjsonPath(segments))
	if !result.Exists() {
		return nil, false
	}
	return value(result), true
}

// gjsonPath joins segments into a gjson path, escaping every byte gjson
// would read as syntax (wildcards, modifiers, separators).
func gjsonPath(segments []string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = gjson.Escape(segment)
	}
	return strings.Join(escaped, ".")
}

func value(result gjson.Result) any {
	if result.Type == gjson.Number && !strings.ContainsAny(result.Raw, ".eE") {
		return result.Int()
	}
	return result.Value()
}

func indexSegment(inner string) (string, error) {
	if inner == "" {
		return "", errors.New("empty index")
	}
	if quote := inner[0]; quote == '"' || quote == '\'' {
		if len(inner) < 2 || inner[len(inner)-1] != quote {
			return "", errors.New("unterminated quoted index")
		}
		return inner[1 : len(inner)-1], nil
	}
	if _, err := strconv.Atoi(inner); err != nil {
		return "", fmt.Errorf("index %q is neither a number nor a quoted key", inner)
	}
	return inner, nil
}

func isIdentByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '$'
}
