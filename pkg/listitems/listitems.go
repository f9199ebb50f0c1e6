// Package listitems finds and expands numbered list-item blocks such as
//
//	{{#listItems.three}}<li>{{> atoms-link }}</li>{{/listItems.three}}
//
// Expansion is purely textual: the block body is repeated as many times as
// the ordinal says, before any partial in the body is resolved.
package listitems

import (
	"regexp"
	"strings"
)

// Ordinals lists the recognised ordinal words; Ordinals[n-1] denotes n.
var Ordinals = [...]string{
	"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
	"eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen",
	"eighteen", "nineteen", "twenty",
}

var (
	ordinalGroup = "(" + strings.Join(Ordinals[:], "|") + ")"

	openRE  = regexp.MustCompile(`\{\{# ?(list[Ii]tems?)\.` + ordinalGroup + ` ?\}\}`)
	closeRE = regexp.MustCompile(`\{\{/ ?list[Ii]tems?\.` + ordinalGroup + ` ?\}\}`)
)

// Marker is an opening list-item block marker.
type Marker struct {
	Match  string
	Word   string
	Count  int
	Plural bool
	Start  int
	End    int
}

// Count returns the numeric value of an ordinal word.
func Count(word string) (int, bool) {
	for i, ordinal := range Ordinals {
		if ordinal == word {
			return i + 1, true
		}
	}
	return 0, false
}

// Find returns every opening marker in text, in source order.
func Find(text string) []Marker {
	matches := openRE.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Marker, 0, len(matches))
	for _, m := range matches {
		word := text[m[4]:m[5]]
		count, _ := Count(word)
		out = append(out, Marker{
			Match:  text[m[0]:m[1]],
			Word:   word,
			Count:  count,
			Plural: strings.HasSuffix(text[m[2]:m[3]], "s"),
			Start:  m[0],
			End:    m[1],
		})
	}
	return out
}

// Expand replaces each closed list-item block with Count copies of its body.
// Nested blocks are expanded from the inside out. An opening marker without a
// matching closing marker is left as is.
func Expand(text string) string {
	var b strings.Builder
	rest := text
	for {
		loc := openRE.FindStringSubmatchIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			return b.String()
		}
		word := rest[loc[4]:loc[5]]
		bodyStart, bodyEnd, closeEnd, ok := findClose(rest, loc[1], word)
		if !ok {
			b.WriteString(rest[:loc[1]])
			rest = rest[loc[1]:]
			continue
		}

		count, _ := Count(word)
		body := Expand(rest[bodyStart:bodyEnd])
		b.WriteString(rest[:loc[0]])
		b.WriteString(strings.Repeat(body, count))
		rest = rest[closeEnd:]
	}
}

// findClose locates the closing marker for word, skipping over nested blocks
// that use the same ordinal.
func findClose(text string, from int, word string) (bodyStart, bodyEnd, closeEnd int, ok bool) {
	depth := 1
	pos := from
	for pos < len(text) {
		nextClose := closeRE.FindStringSubmatchIndex(text[pos:])
		if nextClose == nil {
			return 0, 0, 0, false
		}
		nextOpen := openRE.FindStringSubmatchIndex(text[pos:])
		if nextOpen != nil && nextOpen[0] < nextClose[0] {
			if text[pos+nextOpen[4]:pos+nextOpen[5]] == word {
				depth++
			}
			pos += nextOpen[1]
			continue
		}
		if text[pos+nextClose[2]:pos+nextClose[3]] == word {
			depth--
			if depth == 0 {
				return from, pos + nextClose[0], pos + nextClose[1], true
			}
		}
		pos += nextClose[1]
	}
	return 0, 0, 0, false
}
