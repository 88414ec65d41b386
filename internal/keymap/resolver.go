package keymap

import "slices"

// Resolver maps key strings to actions and lists bindings for help.
type Resolver struct {
	bindings []Binding
	byKey    map[string]Action
}

// NewResolver indexes bindings. When a key appears twice the first
// binding keeps it.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: bindings,
		byKey:    make(map[string]Action),
	}
	for _, b := range bindings {
		for _, k := range b.Keys {
			if _, ok := r.byKey[k]; !ok {
				r.byKey[k] = b.Action
			}
		}
	}
	return r
}

// Resolve returns the action bound to key, or "".
func (r *Resolver) Resolve(key string) Action {
	return r.byKey[key]
}

// KeysFor returns the keys that resolve to a, in binding order.
func (r *Resolver) KeysFor(a Action) []string {
	var keys []string
	for _, b := range r.bindings {
		if b.Action != a {
			continue
		}
		for _, k := range b.Keys {
			if r.byKey[k] == a && !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// ByContext returns the bindings of one context that still have keys.
func (r *Resolver) ByContext(context string) []Binding {
	var out []Binding
	for _, b := range r.bindings {
		if b.Context == context && len(b.Keys) > 0 {
			out = append(out, b)
		}
	}
	return out
}
