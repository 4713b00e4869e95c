package construct

import (
	"reflect"
	"sort"
)

var iacValueType = reflect.TypeOf(IaCValue{})

// DirectDependencies uses reflection to inspect the fields of the resource given and returns the ids
// of every resource it references, either through a field holding a Resource or through an [IaCValue].
// Nested structs, slices, maps and [Join]s are searched; a referenced Resource itself is not descended into.
//
// Fields tagged `deps:"-"` are skipped.
func DirectDependencies(res Resource) []ResourceId {
	self := res.Id()
	seen := make(map[ResourceId]struct{})
	var ids []ResourceId
	walkReferences(reflect.ValueOf(res), true, func(id ResourceId) {
		if id.IsZero() || id == self {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	})
	sort.Sort(sortedIds(ids))
	return ids
}

// ValueReferences returns the ids referenced by an arbitrary value, such as a single property.
func ValueReferences(v any) []ResourceId {
	seen := make(map[ResourceId]struct{})
	var ids []ResourceId
	walkReferences(reflect.ValueOf(v), false, func(id ResourceId) {
		if _, ok := seen[id]; ok || id.IsZero() {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	})
	sort.Sort(sortedIds(ids))
	return ids
}

func walkReferences(v reflect.Value, root bool, add func(ResourceId)) {
	if !v.IsValid() {
		return
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return
		}
		walkReferences(v.Elem(), false, add)

	case reflect.Pointer:
		if v.IsNil() {
			return
		}
		if !root && v.CanInterface() {
			if r, ok := v.Interface().(Resource); ok {
				add(r.Id())
				return
			}
		}
		walkReferences(v.Elem(), false, add)

	case reflect.Struct:
		if v.Type() == iacValueType {
			add(v.Interface().(IaCValue).ResourceId)
			return
		}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || field.Tag.Get("deps") == "-" {
				continue
			}
			walkReferences(v.Field(i), false, add)
		}

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walkReferences(v.Index(i), false, add)
		}

	case reflect.Map:
		for iter := v.MapRange(); iter.Next(); {
			walkReferences(iter.Key(), false, add)
			walkReferences(iter.Value(), false, add)
		}
	}
}
