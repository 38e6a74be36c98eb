package entities

import (
	"encoding/json"
	"maps"
	"reflect"
	"strings"
	"sync"
)

// Extra holds JSON members a type does not model. They are written back
// as they were read, so keys set by the renderer or a newer build survive
// a load and save.
type Extra map[string]json.RawMessage

// Clone returns a copy of the member set.
func (e Extra) Clone() Extra {
	if e == nil {
		return nil
	}
	return maps.Clone(e)
}

// SplitExtra decodes data into known, a pointer to a struct without its own
// UnmarshalJSON, and returns the members its json tags do not name.
func SplitExtra(data []byte, known any) (Extra, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	names := jsonNames(reflect.TypeOf(known).Elem())
	for key := range members {
		// encoding/json matches member names case-insensitively.
		if _, ok := names[strings.ToLower(key)]; ok {
			delete(members, key)
		}
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// JoinExtra encodes known and adds the members of extra it did not write.
func JoinExtra(known any, extra Extra) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, ok := members[key]; !ok {
			members[key] = value
		}
	}
	return json.Marshal(members)
}

var namesByType sync.Map

// jsonNames returns the lower-cased member names a struct type decodes.
func jsonNames(t reflect.Type) map[string]struct{} {
	if cached, ok := namesByType.Load(t); ok {
		return cached.(map[string]struct{})
	}
	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		names[strings.ToLower(name)] = struct{}{}
	}
	namesByType.Store(t, names)
	return names
}
