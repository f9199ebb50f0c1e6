package assembler

import (
	"slices"
)

// Lineage resolves every include of every pattern against the library and
// returns the forward (includes) and reverse (included by) maps. Includes
// that name no known pattern are left out; the engine reports them when
// rendering.
func (a *Assembler) Lineage(lib *Library) (map[string][]string, map[string][]string) {
	forward := make(map[string][]string, len(lib.Patterns))
	reverse := make(map[string][]string, len(lib.Patterns))

	for _, p := range lib.Patterns {
		eng, err := a.engines.Get(p.Engine)
		if err != nil {
			continue
		}
		for _, ref := range eng.FindPartials(p.Template) {
			target, ok := lib.Pattern(eng.FindPartialKey(ref.Match))
			if !ok {
				continue
			}
			forward[p.Key] = appendUnique(forward[p.Key], target.Key)
			reverse[target.Key] = appendUnique(reverse[target.Key], p.Key)
		}
	}

	for key := range forward {
		slices.Sort(forward[key])
	}
	for key := range reverse {
		slices.Sort(reverse[key])
	}
	return forward, reverse
}

func appendUnique(list []string, value string) []string {
	if slices.Contains(list, value) {
		return list
	}
	return append(list, value)
}
