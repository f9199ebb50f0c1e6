// Package datacontext builds the data a pattern sees while rendering: the
// ambient data of the pattern being rendered, merged with any parameters
// passed explicitly at an include site.
package datacontext

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/mohae/deepcopy"
)

// ParentDataKey names the entry under which the ambient (parent) data is
// always reachable from inside a partial.
const ParentDataKey = "parentData"

// StyleModifierKey names the entry holding the style classes of a
// key:modifier include.
const StyleModifierKey = "styleModifier"

// Merge returns a fresh context holding the ambient data overlaid with the
// explicit params; params win on key collisions. A side that is not a
// structured object is ignored, and when neither is, the result is empty.
// The ambient data is also stored under ParentDataKey.
//
// Values are deep copied so nothing done to the result can reach params,
// ambient, or sibling contexts built from the same inputs.
func Merge(params, ambient any) map[string]any {
	parent, hasParent := Normalize(ambient)
	explicit, hasExplicit := Normalize(params)

	out := make(map[string]any, len(parent)+len(explicit)+1)
	if hasParent {
		for key, value := range parent {
			out[key] = deepcopy.Copy(value)
		}
	}
	if hasExplicit {
		for key, value := range explicit {
			out[key] = deepcopy.Copy(value)
		}
	}

	parentCopy := make(map[string]any, len(parent))
	for key, value := range parent {
		parentCopy[key] = deepcopy.Copy(value)
	}
	out[ParentDataKey] = parentCopy
	return out
}

// Normalize converts v into a map when it is a structured object. Maps with
// string keys pass through; structs (and pointers to them) are converted via
// their JSON form. Scalars, slices and nil are not objects.
func Normalize(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return typed, true
	case map[string]string:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = value
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		m, err := jsonToMap(rv.Interface())
		if err != nil {
			return nil, false
		}
		return m, true
	default:
		return nil, false
	}
}

// Clean drops entries whose keys are blank once trimmed and trims the rest.
func Clean(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func jsonToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
